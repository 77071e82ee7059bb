package users

// AccountRepo stores registered accounts. Usernames and emails are unique.
type AccountRepo interface {
	Create(account *Account) error
	GetByUsername(username string) (*Account, error)
	GetByID(id string) (*Account, error)
	List(offset, limit int) ([]*Account, error)
}
