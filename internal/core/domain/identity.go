package domain

// Identity is an authentication assertion to be reconciled onto a local User.
// For social providers every field except PasswordHash comes from the provider's
// verified profile.
type Identity struct {
	Email        string
	DisplayName  string
	AvatarURL    string
	Provider     AuthProvider
	ProviderID   string
	PasswordHash string // set only on credential or passwordless registration
}

// SocialProfile is the verified profile returned by an external identity provider.
type SocialProfile struct {
	Provider      AuthProvider
	ProviderID    string
	Email         string
	EmailVerified bool
	DisplayName   string
	AvatarURL     string
}

// ToIdentity converts a provider profile into a reconcilable Identity.
func (p SocialProfile) ToIdentity() Identity {
	return Identity{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Provider:    p.Provider,
		ProviderID:  p.ProviderID,
	}
}
