package storer

// Metadata keys every record carries.
const (
	KeyTitle    = "title"
	KeyContent  = "content"
	KeyCategory = "category"
	KeyProduct  = "product"
)

type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricDot       Metric = "dotproduct"
	MetricEuclidean Metric = "euclidean"
)

// Document is a knowledge-base entry. It is replaced whole, never patched.
type Document struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Product  string `json:"product"`
}

func (d Document) Metadata() map[string]string {
	return map[string]string{
		KeyTitle:    d.Title,
		KeyContent:  d.Content,
		KeyCategory: d.Category,
		KeyProduct:  d.Product,
	}
}

type Record struct {
	Id       string
	Vector   []float32
	Metadata map[string]string
}

type Match struct {
	Id       string  `json:"id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Product  string  `json:"product"`
}

// NewMatch builds a match from stored metadata.
func NewMatch(id string, score float64, metadata map[string]string) Match {
	return Match{
		Id:       id,
		Score:    score,
		Title:    metadata[KeyTitle],
		Content:  metadata[KeyContent],
		Category: metadata[KeyCategory],
		Product:  metadata[KeyProduct],
	}
}

// Filter is an equality predicate over one metadata field.
type Filter struct {
	Field string
	Value string
}

func Eq(field string, value string) *Filter {
	return &Filter{Field: field, Value: value}
}

func (f *Filter) Matches(metadata map[string]string) bool {
	if f == nil {
		return true
	}
	return metadata[f.Field] == f.Value
}
