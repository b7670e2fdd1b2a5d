package project

// Language is a translation table: identifier → localized text.
type Language struct {
	Data map[string]string
}

// NewLanguage creates an empty Language.
func NewLanguage() *Language {
	return &Language{Data: make(map[string]string)}
}

// Merge copies all entries from src, last write wins.
func (l *Language) Merge(src *Language) {
	if src == nil {
		return
	}
	for k, v := range src.Data {
		l.Data[k] = v
	}
}
