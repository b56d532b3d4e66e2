package models

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&InvestorProfile{},
		&CompanyProfile{},
		&AvailabilityWindow{},
		&OAuthCredential{},
		&MeetingRequest{},
		&TimeProposal{},
		&Meeting{},
		&Notification{},
	}
}
