package i18n

import (
	"fmt"
	"strings"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

const narrationPrefix = "Krishi Mitra Evaluation Results."

// Spoken finding texts. English is taken from the finding itself; a finding
// whose keys are not all present in a language is narrated in English.
var narrations = dict{
	Hindi: {
		"prefix":         "कृषि मित्र मूल्यांकन परिणाम।",
		"recommendation": "सिफारिश",

		"label.ph":       "मिट्टी का pH",
		"label.moisture": "मिट्टी की नमी",
		"label.nitrogen": "नाइट्रोजन स्तर",

		"ph.critical":     "मिट्टी का pH बहुत कम है",
		"ph.critical.rec": "pH को 6.0-7.0 तक बढ़ाने के लिए चूना डालें",
		"ph.warning":      "मिट्टी का pH बहुत अधिक है",
		"ph.warning.rec":  "pH कम करने के लिए गंधक या जैविक पदार्थ डालें",
		"ph.good":         "मिट्टी का pH उत्तम है",
		"ph.good.rec":     "वर्तमान pH स्तर बनाए रखें",

		"moisture.critical":     "मिट्टी की नमी बहुत कम है",
		"moisture.critical.rec": "सिंचाई की आवृत्ति बढ़ाएं",
		"moisture.warning":      "मिट्टी की नमी बहुत अधिक है",
		"moisture.warning.rec":  "सिंचाई कम करें और जल निकासी सुधारें",
		"moisture.good":         "मिट्टी की नमी उत्तम है",
		"moisture.good.rec":     "वर्तमान सिंचाई कार्यक्रम बनाए रखें",

		"nitrogen.critical":     "नाइट्रोजन स्तर बहुत कम है",
		"nitrogen.critical.rec": "नाइट्रोजन उर्वरक (यूरिया या अमोनियम नाइट्रेट) डालें",
		"nitrogen.warning":      "नाइट्रोजन स्तर बहुत अधिक है",
		"nitrogen.warning.rec":  "रिसाव रोकने के लिए नाइट्रोजन का प्रयोग कम करें",
		"nitrogen.good":         "नाइट्रोजन स्तर पर्याप्त है",
		"nitrogen.good.rec":     "वर्तमान उर्वरक कार्यक्रम जारी रखें",
	},
}

// Narrate is the spoken text for one finding and the language it is in.
func Narrate(f entities.Finding, code string) (string, Lang) {
	l := Resolve(code)
	key := fmt.Sprintf("%s.%s", f.Category, f.Status)
	keys := []string{"label." + string(f.Category), key, "recommendation", key + ".rec"}
	m, ok := narrations[l]
	if !ok || !covers(m, keys) {
		return narrate(f.Category.Label(), f.Message, "Recommendation", f.Recommendation), Default
	}
	return narrate(m[keys[0]], m[keys[1]], m[keys[2]], m[keys[3]]), l
}

func covers(m map[string]string, keys []string) bool {
	for _, k := range keys {
		if m[k] == "" {
			return false
		}
	}
	return true
}

// NarrateAll reads every finding after the results heading.
func NarrateAll(findings []entities.Finding, code string) (string, Lang) {
	l := Resolve(code)
	prefix := narrationPrefix
	if m, ok := narrations[l]; ok {
		if m["prefix"] != "" {
			prefix = m["prefix"]
		}
	} else {
		l = Default
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		s, _ := Narrate(f, string(l))
		parts = append(parts, s)
	}
	return prefix + " " + strings.Join(parts, ". "), l
}

func narrate(label, message, rec, recommendation string) string {
	return fmt.Sprintf("%s: %s. %s: %s", label, message, rec, recommendation)
}
