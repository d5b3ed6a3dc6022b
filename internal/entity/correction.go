package entity

// CorrectionField is one entry of a pre-filled manual review form.
type CorrectionField struct {
	Name           string `json:"name"`
	Suggested      string `json:"suggested"`
	Required       bool   `json:"required"`
	NeedsAttention bool   `json:"needs_attention"`
}

// CorrectionForm is the manual-entry form built from a low-confidence
// candidate and its quality issues. Corrections re-enter the pipeline as
// manual candidates with confidence 1.0.
type CorrectionForm struct {
	Fields []CorrectionField `json:"fields"`
}

// Field returns the named form field, or nil.
func (f *CorrectionForm) Field(name string) *CorrectionField {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}
