package models

// Entry is one phonebook record. UserID holds the owner's email.
type Entry struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
}
