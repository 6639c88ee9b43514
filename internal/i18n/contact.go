package i18n

// Keys understood by Text.
const (
	KeyTitle           = "title"
	KeySubtitle        = "subtitle"
	KeyPreviousQueries = "previousQueries"
	KeyHelplineTitle   = "helplineTitle"
	KeySuccessMessage  = "successMessage"
	KeyNoQueries       = "noQueries"
	KeySoilHealth      = "queryTypes.soilHealth"
	KeyCropIssue       = "queryTypes.cropIssue"
	KeyPestAlert       = "queryTypes.pestAlert"
	KeyOther           = "queryTypes.other"
)

var contactTexts = dict{
	English: {
		KeyTitle:           "Contact Us",
		KeySubtitle:        "We are here to help with your farming needs",
		KeyPreviousQueries: "Your Previous Queries",
		KeyHelplineTitle:   "Regional Helpline Numbers",
		KeySuccessMessage:  "Your query has been received. Our team will contact you soon.",
		KeyNoQueries:       "No previous queries found.",
		KeySoilHealth:      "Soil Health",
		KeyCropIssue:       "Crop Issue",
		KeyPestAlert:       "Pest Alert",
		KeyOther:           "Other",
	},
	Hindi: {
		KeyTitle:           "संपर्क करें",
		KeySubtitle:        "हम आपकी कृषि आवश्यकताओं में मदद करने के लिए यहां हैं",
		KeyPreviousQueries: "आपके पिछले प्रश्न",
		KeyHelplineTitle:   "क्षेत्रीय हेल्पलाइन नंबर",
		KeySuccessMessage:  "आपका प्रश्न प्राप्त हो गया है। हमारी टीम जल्द ही आपसे संपर्क करेगी।",
		KeyNoQueries:       "कोई पिछला प्रश्न नहीं मिला।",
		KeySoilHealth:      "मिट्टी का स्वास्थ्य",
		KeyCropIssue:       "फसल समस्या",
		KeyPestAlert:       "कीट चेतावनी",
		KeyOther:           "अन्य",
	},
	Telugu: {
		KeyTitle:           "సంప్రదించండి",
		KeySubtitle:        "మేము మీ వ్యవసాయ అవసరాలకు సహాయం చేయడానికి ఇక్కడ ఉన్నాము",
		KeyPreviousQueries: "మీ మునుపటి ప్రశ్నలు",
		KeyHelplineTitle:   "ప్రాంతీయ హెల్ప్‌లైన్ నంబర్లు",
		KeySuccessMessage:  "మీ ప్రశ్న స్వీకరించబడింది. మా బృందం త్వరలో మిమ్మల్ని సంప్రదిస్తుంది.",
		KeyNoQueries:       "మునుపటి ప్రశ్నలు కనుగొనబడలేదు.",
		KeySoilHealth:      "నేల ఆరోగ్యం",
		KeyCropIssue:       "పంట సమస్య",
		KeyPestAlert:       "పురుగుల హెచ్చరిక",
		KeyOther:           "ఇతర",
	},
	Tamil: {
		KeyTitle:           "தொடர்பு கொள்ளவும்",
		KeySubtitle:        "உங்கள் விவசாய தேவைகளுக்கு உதவ நாங்கள் இங்கே இருக்கிறோம்",
		KeyPreviousQueries: "உங்கள் முந்தைய கேள்விகள்",
		KeyHelplineTitle:   "பிராந்திய உதவி எண்கள்",
		KeySuccessMessage:  "உங்கள் கேள்வி பெறப்பட்டது. எங்கள் குழு விரைவில் உங்களைத் தொடர்பு கொள்ளும்.",
		KeyNoQueries:       "முந்தைய கேள்விகள் எதுவும் கிடைக்கவில்லை.",
		KeySoilHealth:      "மண் ஆரோக்கியம்",
		KeyCropIssue:       "பயிர் பிரச்சனை",
		KeyPestAlert:       "பூச்சி எச்சரிக்கை",
		KeyOther:           "மற்றவை",
	},
}

// Text returns the contact-page string for key. Unknown keys yield "".
func Text(key, code string) string {
	s, _ := contactTexts.lookup(Resolve(code), key)
	return s
}

// Helpline is a regional toll-free number.
type Helpline struct {
	Region string `json:"region"`
	Number string `json:"number"`
}

var helplines = []Helpline{
	{"North India", "1800-180-1551"},
	{"South India", "1800-425-1556"},
	{"East India", "1800-345-6789"},
	{"West India", "1800-233-4000"},
	{"Central India", "1800-121-5555"},
}

// Helplines returns a copy of the regional helpline table.
func Helplines() []Helpline {
	return append([]Helpline(nil), helplines...)
}
