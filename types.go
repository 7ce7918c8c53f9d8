package forceoauth

// UserInfo is the identity record returned by the Salesforce userinfo endpoint,
// enriched with the derived partner endpoint and instance name.
type UserInfo struct {
	// Subject is the OpenID Connect subject (the identity URL of the user)
	Subject string `json:"sub"`

	// UserID is the 18-character Salesforce user ID
	UserID string `json:"user_id"`

	// OrganizationID is the 18-character Salesforce org ID
	OrganizationID string `json:"organization_id"`

	PreferredUsername string `json:"preferred_username"`
	Nickname          string `json:"nickname"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Zoneinfo          string `json:"zoneinfo"`
	Locale            string `json:"locale"`
	Language          string `json:"language"`
	UserType          string `json:"user_type"`
	Active            bool   `json:"active"`
	Profile           string `json:"profile"`
	Picture           string `json:"picture"`
	UTCOffset         int64  `json:"utcOffset"`
	UpdatedAt         string `json:"updated_at"`

	// Photos maps photo size names ("picture", "thumbnail") to URLs
	Photos map[string]string `json:"photos,omitempty"`

	// URLs maps endpoint roles ("partner", "enterprise", "rest", ...) to URL
	// templates that may contain VersionPlaceholder
	URLs map[string]string `json:"urls"`

	// PartnerURL is URLs["partner"] with VersionPlaceholder replaced by APIVersion.
	// Never read from the remote payload.
	PartnerURL string `json:"-"`

	// Instance is the first label of PartnerURL's host, e.g. "na42".
	// Empty when it could not be derived.
	Instance string `json:"-"`
}
