package codes

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vademecum/internal"
)

// AdminRecord is the write payload of the admin endpoints. Hierarchy levels are sent as
// nested {id, label, longLabel} objects, which the normalizer reads back unchanged.
type AdminRecord struct {
	Tipo       string `json:"tipo"`
	NomeCodigo string `json:"nomecodigo" validate:"notblank"`
	Cabecalho  string `json:"cabecalho,omitempty"`
	internal.Hierarchy
	NumArtigo string `json:"num_artigo,omitempty"`
	Normativo string `json:"normativo,omitempty"`
	Ordem     string `json:"ordem,omitempty"`
}

func NewAdminRecord(rec internal.CodeArticleRecord) AdminRecord {
	return AdminRecord{
		Tipo:       strings.TrimSpace(rec.Tipo),
		NomeCodigo: strings.TrimSpace(rec.NomeCodigo),
		Cabecalho:  strings.TrimSpace(rec.Cabecalho),
		Hierarchy:  rec.Hierarchy,
		NumArtigo:  strings.TrimSpace(rec.NumArtigo),
		Normativo:  rec.Normativo,
		Ordem:      strings.TrimSpace(rec.Ordem),
	}
}

const (
	notBlankTag      = "notblank"
	articleOrTextTag = "num_artigo_or_normativo"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(adminRecordStructValidation, AdminRecord{})
}

// ValidateAdminRecord returns validator.ValidationErrors when rec cannot be written.
func ValidateAdminRecord(rec AdminRecord) error {
	return validate.Struct(rec)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// one of num_artigo or normativo is required
func adminRecordStructValidation(sl validator.StructLevel) {
	rec, ok := sl.Current().Interface().(AdminRecord)
	if !ok {
		return
	}
	if strings.TrimSpace(rec.NumArtigo) == "" && strings.TrimSpace(rec.Normativo) == "" {
		sl.ReportError(rec.NumArtigo, "num_artigo", "NumArtigo", articleOrTextTag, "")
		sl.ReportError(rec.Normativo, "normativo", "Normativo", articleOrTextTag, "")
	}
}
