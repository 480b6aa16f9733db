// AngelaMos | 2026
// dto.go

package citation

type FormatRequest struct {
	Source Source `json:"source"`
	Style  string `json:"style"           validate:"required"`
	Index  int    `json:"index,omitempty" validate:"omitempty,min=1,max=10000"`
}

type BibliographyRequest struct {
	Sources []Source `json:"sources"         validate:"required,min=1,max=1000,dive"`
	Style   string   `json:"style"           validate:"required"`
	Title   string   `json:"title,omitempty" validate:"max=200"`
}

type BibliographyResponse struct {
	Style Style  `json:"style"`
	Count int    `json:"count"`
	Text  string `json:"text"`
}

type ExportRequest struct {
	Sources []Source `json:"sources"         validate:"required,min=1,max=1000,dive"`
	Format  string   `json:"format"          validate:"required,oneof=bibtex ris xlsx"`
	Style   string   `json:"style,omitempty"`
}

type InsertRequest struct {
	Text     string `json:"text"            validate:"max=200000"`
	Position int    `json:"position"`
	Source   Source `json:"source"`
	Style    string `json:"style"           validate:"required"`
	Index    int    `json:"index,omitempty" validate:"omitempty,min=1,max=10000"`
}

type InsertResponse struct {
	Text     string   `json:"text"`
	Citation Citation `json:"citation"`
}
