package dto

type TransactionFilters struct {
	AccountID     string
	ServiceType   string
	Status        string
	IncludeVoided bool
	Page          int
	PageSize      int
}
