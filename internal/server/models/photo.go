package models

// Photo belongs to exactly one user. PublicID is the object key in the
// photo store; nil means the photo has no remote object.
type Photo struct {
	ID       int64
	UserID   int64
	URL      string
	PublicID *string
	IsMain   bool
}

// HasRemoteObject reports whether deleting the photo also has to delete
// an object from the photo store.
func (p *Photo) HasRemoteObject() bool {
	return p.PublicID != nil && *p.PublicID != ""
}
