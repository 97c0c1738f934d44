package cli

import (
	"github.com/toyz/siggs/pkg/synth"
)

// TypeReport is the JSON form of a synthesized type
type TypeReport struct {
	Identity string        `json:"identity"`
	ID       string        `json:"id"`
	Fields   []FieldReport `json:"fields"`
}

// FieldReport is the JSON form of a synthesized field
type FieldReport struct {
	Name        string                   `json:"name"`
	Parameter   string                   `json:"parameter"`
	GoName      string                   `json:"goName"`
	Type        string                   `json:"type"`
	Tag         string                   `json:"tag"`
	Annotations []map[string]interface{} `json:"annotations,omitempty"`
}

// NewTypeReport describes t
func NewTypeReport(t *synth.Type) TypeReport {
	report := TypeReport{
		Identity: t.Name(),
		ID:       t.ID().String(),
		Fields:   make([]FieldReport, 0, t.NumField()),
	}
	for _, f := range t.Fields() {
		fr := FieldReport{
			Name:      f.Name(),
			Parameter: f.Parameter(),
			GoName:    f.GoName(),
			Type:      f.Type().String(),
			Tag:       string(f.Tag()),
		}
		for _, inst := range f.Annotations() {
			fr.Annotations = append(fr.Annotations, inst.Source().Map())
		}
		report.Fields = append(report.Fields, fr)
	}
	return report
}
