package models

// User is the profile returned by the backend after a Google sign-in.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Session is the authenticated identity as confirmed by the backend.
// User is nil whenever Authenticated is false.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// DisplayName prefers the user's name and falls back to their email,
// matching how the backend identifies accounts.
func (s Session) DisplayName() string {
	if s.User == nil {
		return ""
	}
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}

// Document is an uploaded file record. Size, FlashcardCount and UploadDate
// are computed server-side; UploadDate is kept as the raw ISO string the
// backend emits since it carries no timezone.
type Document struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	Size           int64  `json:"size"`
	FlashcardCount int    `json:"flashcard_count"`
	UploadDate     string `json:"upload_date"`
}

// Flashcard is one generated question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Stats are the server-derived per-user totals.
type Stats struct {
	TotalFiles int `json:"total_files"`
	TotalCards int `json:"total_cards"`
}
