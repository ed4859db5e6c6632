package question

// Bank defines the bank file schema loaded from JSON or YAML.
type Bank struct {
	Version   int        `json:"version" yaml:"version"`
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question represents a single question with optional choices and its correct answers.
type Question struct {
	ID             string   `json:"id" yaml:"id"`
	Text           string   `json:"text" yaml:"text"`
	Options        []Option `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswers []string `json:"correct_answers" yaml:"correct_answers"`
}

// Option is one selectable choice of a question.
type Option struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// IsFreeText reports whether the question expects a typed response.
func (q Question) IsFreeText() bool {
	return len(q.Options) == 0
}

// IsMultiSelect reports whether more than one option must be selected.
func (q Question) IsMultiSelect() bool {
	return !q.IsFreeText() && len(q.CorrectAnswers) > 1
}

// OptionIndex returns the index of the option with the given key, or -1.
func (q Question) OptionIndex(key string) int {
	for i, option := range q.Options {
		if option.Key == key {
			return i
		}
	}
	return -1
}

// Len returns the number of questions in the bank.
func (b Bank) Len() int {
	return len(b.Questions)
}
