package models

// User is the CMS account behind a manager login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthSession is the result of a successful CMS login.
type AuthSession struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}

// MenuItemInput carries the manage-menu form. Price is what the manager typed.
type MenuItemInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageID     string `json:"image,omitempty"`
}
