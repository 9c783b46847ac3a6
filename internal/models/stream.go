package models

// StreamScope is the (user, course, module) triple an access token is bound to
type StreamScope struct {
	UserID   int64
	CourseID int64
	ModuleID int64
	Email    string
}

// Covers reports whether a token with this scope may serve the requested pair.
// A token minted for one (course, module) never authorizes any other pair.
func (s StreamScope) Covers(courseID int64, moduleID int64) bool {
	return s.CourseID == courseID && s.ModuleID == moduleID
}

// StreamRequest is one proxied asset request, transient and never persisted
type StreamRequest struct {
	Token    string
	Type     AssetType
	FileName string
	CourseID int64
	ModuleID int64
}
