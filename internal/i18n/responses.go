package i18n

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Intent is what a farmer's chat message is about.
type Intent string

const (
	IntentSoil     Intent = "soil"
	IntentPest     Intent = "pest"
	IntentCrop     Intent = "crop"
	IntentWeather  Intent = "weather"
	IntentGreeting Intent = "greeting"
	IntentDefault  Intent = "default"
)

var responses = dict{
	English: {
		string(IntentGreeting): "Hello! I'm Krishi Mitra, your farming assistant. How can I help you today?",
		string(IntentSoil):     "Based on your location and crop type, I recommend testing soil pH and nutrient levels. Consider adding organic compost to improve soil health.",
		string(IntentPest):     "I've detected potential pest risks in your area. Check for aphids and caterpillars. Consider using neem oil as a natural pesticide.",
		string(IntentCrop):     "Your crops are showing good growth patterns. Maintain current watering schedule and monitor for any nutrient deficiencies.",
		string(IntentWeather):  "Weather forecast shows optimal conditions for farming this week. Perfect time for planting or harvesting.",
		string(IntentDefault):  "I understand your concern about farming. Let me help you with the best agricultural practices for your situation.",
	},
	Hindi: {
		string(IntentGreeting): "नमस्ते! मैं कृषि मित्र हूं, आपका कृषि सहायक। आज मैं आपकी कैसे मदद कर सकता हूं?",
		string(IntentSoil):     "आपके स्थान और फसल के प्रकार के आधार पर, मैं मिट्टी की pH और पोषक तत्वों के स्तर की जांच की सिफारिश करता हूं।",
		string(IntentPest):     "आपके क्षेत्र में कीट के जोखिम का पता चला है। एफिड्स और कैटरपिलर की जांच करें।",
		string(IntentCrop):     "आपकी फसलें अच्छी वृद्धि के पैटर्न दिखा रही हैं। वर्तमान पानी देने का कार्यक्रम बनाए रखें।",
		string(IntentWeather):  "मौसम पूर्वानुमान इस सप्ताह कृषि के लिए अनुकूल परिस्थितियां दिखाता है।",
		string(IntentDefault):  "मैं कृषि के बारे में आपकी चिंता समझता हूं। मैं आपकी स्थिति के लिए सर्वोत्तम कृषि प्रथाओं में मदद करूंगा।",
	},
	Telugu: {
		string(IntentGreeting): "నమస్కారం! నేను కృషి మిత్ర, మీ వ్యవసాయ సహాయకుడిని. ఈరోజు నేను మీకు ఎలా సహాయం చేయగలను?",
		string(IntentSoil):     "మీ ప్రాంతం మరియు పంట రకం ఆధారంగా, నేను మట్టి pH మరియు పోషక స్థాయిలను పరీక్షించమని సిఫార్సు చేస్తున్నాను.",
		string(IntentPest):     "మీ ప్రాంతంలో కీటకాల ప్రమాదాలను గుర్తించాను. అఫిడ్స్ మరియు గొంగళి పురుగుల కోసం చూడండి.",
		string(IntentCrop):     "మీ పంటలు మంచి పెరుగుదల నమూనాలను చూపిస్తున్నాయి. ప్రస్తుత నీటిపారుదల షెడ్యూల్‌ను కొనసాగించండి.",
		string(IntentWeather):  "వాతావరణ సూచన ఈ వారం వ్యవసాయానికి అనుకూలమైన పరిస్థితులను చూపిస్తుంది.",
		string(IntentDefault):  "వ్యవసాయం గురించి మీ ఆందోళనను నేను అర్థం చేసుకున్నాను. మీ పరిస్థితికి ఉత్తమ వ్యవసాయ పద్ధతులతో నేను మీకు సహాయం చేస్తాను.",
	},
	Tamil: {
		string(IntentGreeting): "வணக்கம்! நான் கிருஷி மித்ரா, உங்கள் விவசாய உதவியாளர். இன்று நான் உங்களுக்கு எப்படி உதவ முடியும்?",
		string(IntentSoil):     "உங்கள் இடம் மற்றும் பயிர் வகையின் அடிப்படையில், மண்ணின் pH மற்றும் ஊட்டச்சத்து அளவுகளைச் சோதிக்க பரிந்துரைக்கிறேன்.",
		string(IntentPest):     "உங்கள் பகுதியில் பூச்சி அபாயங்கள் கண்டறியப்பட்டுள்ளன. அசுவினி மற்றும் கம்பளிப்பூச்சிகளைச் சரிபார்க்கவும்.",
		string(IntentCrop):     "உங்கள் பயிர்கள் நல்ல வளர்ச்சியைக் காட்டுகின்றன. தற்போதைய நீர்ப்பாசன அட்டவணையைத் தொடரவும்.",
		string(IntentWeather):  "இந்த வாரம் விவசாயத்திற்கு சாதகமான வானிலை நிலவும் என முன்னறிவிப்பு காட்டுகிறது.",
		string(IntentDefault):  "விவசாயம் பற்றிய உங்கள் கவலையை நான் புரிந்துகொள்கிறேன். உங்கள் சூழ்நிலைக்கு சிறந்த விவசாய முறைகளில் உதவுகிறேன்.",
	},
}

// Format returns the canned reply for intent in the language identified by code.
// Unsupported codes and missing entries fall back to English.
func Format(intent Intent, code string) string {
	s, _ := responses.lookup(Resolve(code), string(intent))
	if s == "" {
		s, _ = responses.lookup(Default, string(IntentDefault))
	}
	return s
}

type keyword struct {
	intent Intent
	words  []string
}

// Checked in order; the first intent with a hit wins.
var keywords = []keyword{
	{IntentSoil, []string{"soil", "मिट्टी", "మట్టి", "మట్టిని", "மண்"}},
	{IntentPest, []string{"pest", "कीट", "కీటకాలు", "కీటక", "பூச்சி"}},
	{IntentCrop, []string{"crop", "फसल", "పంట", "பயிர்"}},
	{IntentWeather, []string{"weather", "मौसम", "వాతావరణం", "வானிலை"}},
	{IntentGreeting, []string{"hello", "hi", "namaste", "नमस्ते", "నమస్కారం", "வணக்கம்"}},
}

// DetectIntent classifies a chat message by keyword. Latin keywords match whole
// words (optionally plural), other scripts match anywhere in the text.
func DetectIntent(message string) Intent {
	msg := strings.ToLower(norm.NFC.String(message))
	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
	for _, k := range keywords {
		for _, w := range k.words {
			if isLatin(w) {
				if containsWord(words, w) {
					return k.intent
				}
			} else if strings.Contains(msg, norm.NFC.String(w)) {
				return k.intent
			}
		}
	}
	return IntentDefault
}

// Reply is the assistant answer to a chat message.
func Reply(message, code string) string {
	return Format(DetectIntent(message), code)
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w || x == w+"s" {
			return true
		}
	}
	return false
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}
