package form

import (
	"fmt"
	"slices"
	"time"
)

// Photo references a local image that has not been encoded yet.
type Photo struct {
	Path        string
	ContentType string
}

// State is the mutable form record for one session. It is not safe for
// concurrent use.
type State struct {
	values map[string]string
	skills []string
	photo  *Photo
}

// Snapshot is the submit-time view of a State.
type Snapshot struct {
	Values map[string]any
	Photo  *Photo
}

// NewState returns a state with every registered field blank.
func NewState() *State {
	s := &State{values: make(map[string]string, len(byID)), skills: []string{}}
	for id, f := range byID {
		if f.Kind == KindSkills || id == FieldAge {
			continue
		}
		s.values[id] = ""
	}
	return s
}

// SetField overwrites a scalar field.
func (s *State) SetField(id, value string) error {
	f, ok := byID[id]
	if !ok {
		return fmt.Errorf("form: unknown field %q", id)
	}
	if f.Kind == KindSkills {
		return fmt.Errorf("form: %q is a multi-select field, use ToggleSkill", id)
	}
	if f.ReadOnly {
		return fmt.Errorf("form: %q is derived and cannot be set", id)
	}
	s.values[id] = value
	return nil
}

// Field returns the current value of a scalar field.
func (s *State) Field(id string) string {
	return s.values[id]
}

// ToggleSkill adds or removes a skill. Adding a present skill is a no-op.
func (s *State) ToggleSkill(value string, included bool) error {
	f := byID[FieldSkills]
	if !f.HasOption(value) {
		return fmt.Errorf("form: unknown skill %q", value)
	}
	i := slices.Index(s.skills, value)
	switch {
	case included && i < 0:
		s.skills = append(s.skills, value)
	case !included && i >= 0:
		s.skills = slices.Delete(s.skills, i, i+1)
	}
	return nil
}

// Skills returns the selected skills in selection order.
func (s *State) Skills() []string {
	return slices.Clone(s.skills)
}

// SetPhoto attaches a local photo; nil detaches it.
func (s *State) SetPhoto(p *Photo) {
	s.photo = p
}

// Photo returns the attached photo, if any.
func (s *State) Photo() *Photo {
	return s.photo
}

// Snapshot copies the state for submission and derives age from birthDate at now.
func (s *State) Snapshot(now time.Time) Snapshot {
	values := make(map[string]any, len(s.values)+2)
	for k, v := range s.values {
		values[k] = v
	}
	values[FieldSkills] = slices.Clone(s.skills)
	if age, ok := AgeAt(s.values[FieldBirthDate], now); ok {
		values[FieldAge] = age
	} else {
		values[FieldAge] = ""
	}
	var photo *Photo
	if s.photo != nil {
		p := *s.photo
		photo = &p
	}
	return Snapshot{Values: values, Photo: photo}
}
