package contracts

// MapMessage carries uniquely keyed, typed scalar entries. Entries are
// unordered and setting an existing key replaces its value.
type MapMessage struct {
	BaseMessage
	Entries map[string]Value `json:"entries"`
}

// NewMapMessage creates an empty map message with generated ID and current timestamp
func NewMapMessage() *MapMessage {
	return &MapMessage{
		BaseMessage: NewBaseMessage(KindMap),
		Entries:     make(map[string]Value),
	}
}

// SetString stores a string entry under key.
func (m *MapMessage) SetString(key, value string) {
	m.SetValue(key, StringValue(value))
}

// SetInt stores an integer entry under key.
func (m *MapMessage) SetInt(key string, value int64) {
	m.SetValue(key, IntValue(value))
}

// SetValue stores a typed entry under key.
func (m *MapMessage) SetValue(key string, value Value) {
	if m.Entries == nil {
		m.Entries = make(map[string]Value)
	}
	m.Entries[key] = value
}

// GetString returns the string stored under key, and whether a string entry exists.
func (m *MapMessage) GetString(key string) (string, bool) {
	v, ok := m.Entries[key]
	if !ok || v.Kind != ValueString {
		return "", false
	}
	return v.Str, true
}

// GetInt returns the integer stored under key, and whether an integer entry exists.
func (m *MapMessage) GetInt(key string) (int64, bool) {
	v, ok := m.Entries[key]
	if !ok || v.Kind != ValueInt {
		return 0, false
	}
	return v.Int, true
}

// Len returns the number of entries.
func (m *MapMessage) Len() int {
	return len(m.Entries)
}
