package model

import "strings"

// OwnedBy reports whether email owns the view.
func (v SavedView) OwnedBy(email string) bool {
	return email != "" && strings.EqualFold(v.OwnerEmail, email)
}

// VisibleTo reports whether email may read the view.
func (v SavedView) VisibleTo(email string) bool {
	return v.IsShared || v.OwnedBy(email)
}
