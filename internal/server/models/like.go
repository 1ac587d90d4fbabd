package models

// Like is a directed edge: SourceUserID liked LikedUserID.
// The ordered pair is unique.
type Like struct {
	SourceUserID int64
	LikedUserID  int64
}
