package domain

// EquipmentLock is the equipment identity the ongoing conversation
// currently talks about. It is empty at conversation start, overwritten
// after each turn that resolves a primary equipment, and cleared when
// the caller resets its context.
type EquipmentLock struct {
	Brand string
	Type  string
	Title string
}

// Active reports whether the lock can constrain retrieval. A title
// alone carries no filterable identity.
func (l EquipmentLock) Active() bool {
	return l.Brand != "" || l.Type != ""
}

// IsZero reports whether no field of the lock is set.
func (l EquipmentLock) IsZero() bool {
	return l.Brand == "" && l.Type == "" && l.Title == ""
}

// ConversationContext is the previous turn as remembered by the caller.
// The engine never persists it; the caller passes it into each query
// and receives the updated value back.
type ConversationContext struct {
	LastQuestion string
	LastAnswer   string
	LastBrand    string
	LastType     string
	LastTitle    string
}

// HasPrior reports whether a previous question was recorded.
func (c ConversationContext) HasPrior() bool {
	return c.LastQuestion != ""
}

// Lock returns the equipment lock recorded by the previous turn.
func (c ConversationContext) Lock() EquipmentLock {
	return EquipmentLock{
		Brand: c.LastBrand,
		Type:  c.LastType,
		Title: c.LastTitle,
	}
}
