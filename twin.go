package authflow

import (
	"context"
	"encoding/json"
	"regexp"
	"slices"
)

// Twin option lists, in display order.
var (
	Moods           = []string{"Calm", "Focused", "Curious", "Stressed", "Happy"}
	CognitiveStyles = []string{"Analytical", "Creative", "Empathic", "Balanced"}
	FocusOptions    = []string{"Productivity", "Self-awareness", "Learning", "Health", "Relationships"}
	AvatarStyles    = []string{"Neural Sphere", "Light Entity", "Abstract Face", "Data Pulse"}
	ModelTypes      = []string{"Cognitive", "Emotional", "Behavioral", "Hybrid"}
)

// Twin form messages.
const (
	MsgTwinNameRequired = "Twin name is required."
	MsgTwinOption       = "Choose one of the listed options."
	MsgTwinPercent      = "Must be between 0 and 100."
	MsgTwinColor        = "Use a #rrggbb color."
)

var auraPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TwinData is the digital twin profile kept under KeyTwin.
type TwinData struct {
	Name                 string   `json:"name"`
	Purpose              string   `json:"purpose"`
	Mood                 string   `json:"mood"`
	EnergyLevel          int      `json:"energyLevel"`
	ReflectionDepth      int      `json:"reflectionDepth"`
	CognitiveStyle       string   `json:"cognitiveStyle"`
	Sensitivity          int      `json:"sensitivity"`
	FocusAreas           []string `json:"focusAreas"`
	ModelType            string   `json:"modelType"`
	AvatarStyle          string   `json:"avatarStyle"`
	AuraColor            string   `json:"auraColor"`
	PersonalityIntensity int      `json:"personalityIntensity"`
	InsightDepth         int      `json:"insightDepth"`
	MoodVariability      int      `json:"moodVariability"`
}

// NewTwin returns a blank twin with the form defaults.
func NewTwin() TwinData {
	return TwinData{
		Mood:                 "Calm",
		EnergyLevel:          70,
		ReflectionDepth:      70,
		CognitiveStyle:       "Balanced",
		Sensitivity:          50,
		FocusAreas:           []string{},
		ModelType:            "Hybrid",
		AvatarStyle:          "Neural Sphere",
		AuraColor:            "#9f7bff",
		PersonalityIntensity: 60,
		InsightDepth:         75,
		MoodVariability:      40,
	}
}

// ToggleFocus adds area when absent and removes it when present.
func (t *TwinData) ToggleFocus(area string) {
	if i := slices.Index(t.FocusAreas, area); i >= 0 {
		t.FocusAreas = slices.Delete(t.FocusAreas, i, i+1)
		return
	}
	t.FocusAreas = append(t.FocusAreas, area)
}

// TwinErrors maps a json field name to its message.
type TwinErrors map[string]string

func ValidateTwin(t TwinData) TwinErrors {
	errs := TwinErrors{}
	if t.Name == "" {
		errs["name"] = MsgTwinNameRequired
	}
	choices := []struct {
		field, value string
		list         []string
	}{
		{"mood", t.Mood, Moods},
		{"cognitiveStyle", t.CognitiveStyle, CognitiveStyles},
		{"modelType", t.ModelType, ModelTypes},
		{"avatarStyle", t.AvatarStyle, AvatarStyles},
	}
	for _, c := range choices {
		if !slices.Contains(c.list, c.value) {
			errs[c.field] = MsgTwinOption
		}
	}
	for _, a := range t.FocusAreas {
		if !slices.Contains(FocusOptions, a) {
			errs["focusAreas"] = MsgTwinOption
		}
	}
	percents := map[string]int{
		"energyLevel":          t.EnergyLevel,
		"reflectionDepth":      t.ReflectionDepth,
		"sensitivity":          t.Sensitivity,
		"personalityIntensity": t.PersonalityIntensity,
		"insightDepth":         t.InsightDepth,
		"moodVariability":      t.MoodVariability,
	}
	for field, v := range percents {
		if v < 0 || v > 100 {
			errs[field] = MsgTwinPercent
		}
	}
	if !auraPattern.MatchString(t.AuraColor) {
		errs["auraColor"] = MsgTwinColor
	}
	return errs
}

// SaveTwin validates t and stores it as JSON.
func (s *Session) SaveTwin(ctx context.Context, t TwinData) (TwinErrors, error) {
	if errs := ValidateTwin(t); len(errs) > 0 {
		return errs, ErrInvalidInput
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return nil, s.store.Set(ctx, KeyTwin, string(raw))
}

// LoadTwin returns the stored twin, or NewTwin and false when none is saved.
func (s *Session) LoadTwin(ctx context.Context) (TwinData, bool, error) {
	raw, ok, err := s.store.Get(ctx, KeyTwin)
	if err != nil || !ok {
		return NewTwin(), false, err
	}
	t := NewTwin()
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return NewTwin(), false, err
	}
	return t, true, nil
}
