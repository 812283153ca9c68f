package pregnancy

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// BirthClub labels a due date by month and year, e.g. "March 2026".
// It returns "" when dueDate is unknown.
func BirthClub(dueDate *time.Time) string {
	if dueDate == nil || dueDate.IsZero() {
		return ""
	}
	return monthNames[dueDate.Month()-1] + " " + strconv.Itoa(dueDate.Year())
}

var babySizes = [TermWeeks + 1]string{
	"Seed", "Poppy seed", "Sesame seed", "Blueberry", "Avocado (tiny)",
	"Lima bean", "Grape", "Raspberry", "Strawberry", "Green olive",
	"Kumquat", "Fig", "Lime", "Lemon", "Apple",
	"Orange", "Avocado", "Turnip", "Bell pepper", "Mango",
	"Banana", "Carrot", "Papaya", "Grapefruit", "Corn on the cob",
	"Cantaloupe", "Rutabaga", "Cauliflower", "Eggplant", "Cabbage",
	"Butternut squash", "Coconut", "Pineapple", "Honeydew melon", "Durian",
	"Large mango", "Honeydew (bigger)", "Small watermelon", "Large watermelon", "Very large watermelon",
	"Full-term (approx)",
}

// ClampWeek limits week to 0..40.
func ClampWeek(week int) int {
	if week < 0 {
		return 0
	}
	if week > TermWeeks {
		return TermWeeks
	}
	return week
}

// BabySize returns the comparison fruit for week, clamped to 0..40.
func BabySize(week int) string {
	return babySizes[ClampWeek(week)]
}

// Guide is the weekly checklist shown next to the progress ring.
type Guide struct {
	Dos       []string `json:"dos"`
	Donts     []string `json:"donts"`
	Symptoms  []string `json:"symptoms"`
	Exercises []string `json:"exercises"`
	Nutrition []string `json:"nutrition"`
}

var (
	baseDos = []string{
		"Continue prenatal vitamins (folic acid + iron).",
		"Drink plenty of water (aim 8+ cups/day).",
		"Keep a balanced diet with protein, vegetables, and whole grains.",
	}
	baseDonts = []string{
		"Avoid alcohol and recreational drugs.",
		"Do not smoke or expose yourself to secondhand smoke.",
		"Avoid raw/undercooked meat and unpasteurized products.",
	}
	weekSpecificDos = map[int]string{
		0:  "If trying to conceive, track LMP and start folic acid.",
		12: "First-trimester screening may be recommended.",
		20: "Anomaly scan usually around week 20.",
		28: "Consider glucose screening for gestational diabetes.",
		36: "Discuss birth plan and signs of labor with your provider.",
	}
)

// WeekGuide builds the checklist for week, clamped to 0..40. The stage
// split here (<=12, <=27) follows the dashboard, not TrimesterFromLMPWeeks.
func WeekGuide(week int) Guide {
	w := ClampWeek(week)
	g := Guide{
		Dos:   append([]string(nil), baseDos...),
		Donts: append([]string(nil), baseDonts...),
	}
	switch {
	case w <= 12:
		g.Symptoms = append(g.Symptoms, "Nausea, fatigue, breast tenderness are common.")
		g.Exercises = append(g.Exercises, "Gentle walking, pelvic tilts.")
		g.Nutrition = append(g.Nutrition, "Small frequent meals to manage nausea.")
		g.Dos = append(g.Dos, "Schedule your first prenatal appointment.")
	case w <= 27:
		g.Symptoms = append(g.Symptoms, "Energy often improves; possible back pain.")
		g.Exercises = append(g.Exercises, "Prenatal yoga, swimming, brisk walking.")
		g.Nutrition = append(g.Nutrition, "Increase iron-rich foods and calcium.")
		g.Dos = append(g.Dos, "Start pelvic floor exercises (Kegels).")
	default:
		g.Symptoms = append(g.Symptoms, "Shortness of breath, swollen ankles, Braxton Hicks.")
		g.Exercises = append(g.Exercises, "Gentle stretching, prenatal yoga, walking.")
		g.Nutrition = append(g.Nutrition, "Focus on protein and hydration; avoid excessive sodium.")
		g.Dos = append(g.Dos, "Prepare birth plan and pack bag for hospital.")
	}
	if extra, ok := weekSpecificDos[w]; ok {
		g.Dos = append(g.Dos, extra)
	}
	g.Nutrition = append(g.Nutrition, "Eat leafy greens, lean protein, whole grains, healthy fats.")
	return g
}

// SymptomGuidance combines per-symptom tips.
type SymptomGuidance struct {
	Exercise  []string `json:"exercise"`
	Nutrition []string `json:"nutrition"`
	Dos       []string `json:"dos"`
	Donts     []string `json:"donts"`
}

var symptomTips = map[string]SymptomGuidance{
	"nausea": {
		Exercise:  []string{"Gentle walking", "Deep breathing"},
		Nutrition: []string{"Ginger tea", "Small frequent meals"},
		Dos:       []string{"Stay hydrated", "Eat bland foods"},
		Donts:     []string{"Avoid spicy foods", "Skip meals"},
	},
	"fatigue": {
		Exercise:  []string{"Prenatal yoga", "Stretching"},
		Nutrition: []string{"Iron-rich foods", "Whole grains"},
		Dos:       []string{"Rest often", "Eat balanced meals"},
		Donts:     []string{"Overexert", "Skip breakfast"},
	},
	"back pain": {
		Exercise:  []string{"Pelvic tilts", "Swimming"},
		Nutrition: []string{"Calcium-rich foods"},
		Dos:       []string{"Wear supportive shoes", "Sleep on your side with a pillow between the knees"},
		Donts:     []string{"Lift heavy objects", "Stand for long periods"},
	},
	"heartburn": {
		Exercise:  []string{"Short walks after meals"},
		Nutrition: []string{"Small frequent meals", "Yogurt or milk"},
		Dos:       []string{"Stay upright after eating"},
		Donts:     []string{"Eat right before bed", "Eat greasy or spicy foods"},
	},
	"swelling": {
		Exercise:  []string{"Ankle circles", "Swimming"},
		Nutrition: []string{"Potassium-rich foods", "Plenty of water"},
		Dos:       []string{"Elevate your feet"},
		Donts:     []string{"Add extra salt", "Sit with crossed legs for long"},
	},
}

// KnownSymptoms lists the symptoms GuidanceForSymptoms recognises.
func KnownSymptoms() []string {
	return []string{"nausea", "fatigue", "back pain", "heartburn", "swelling"}
}

// GuidanceForSymptoms concatenates tips for each known symptom in order.
// Matching ignores case and surrounding space; unknown symptoms are skipped.
func GuidanceForSymptoms(symptoms []string) SymptomGuidance {
	out := SymptomGuidance{Exercise: []string{}, Nutrition: []string{}, Dos: []string{}, Donts: []string{}}
	for _, s := range symptoms {
		tips, ok := symptomTips[strings.ToLower(strings.TrimSpace(s))]
		if !ok {
			continue
		}
		out.Exercise = append(out.Exercise, tips.Exercise...)
		out.Nutrition = append(out.Nutrition, tips.Nutrition...)
		out.Dos = append(out.Dos, tips.Dos...)
		out.Donts = append(out.Donts, tips.Donts...)
	}
	return out
}
