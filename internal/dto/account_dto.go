package dto

// PlatformCredentials carries the freshly obtained authentication material
// for one platform. Which fields are meaningful depends on the platform the
// request targets; ValidateFor in the service layer enforces the required set.
type PlatformCredentials struct {
	// PSN
	AccountID    string `json:"accountId,omitempty"`
	OnlineID     string `json:"onlineId,omitempty"`
	IsPlus       bool   `json:"isPlus,omitempty"`
	NpssoToken   string `json:"npssoToken,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`

	// Xbox
	XUID     string `json:"xuid,omitempty"`
	Gamertag string `json:"gamertag,omitempty"`
	UserHash string `json:"userHash,omitempty"`

	// Steam
	SteamID     string `json:"steamId,omitempty"`
	SteamAPIKey string `json:"steamApiKey,omitempty"`

	// Trophy aggregate snapshot reported by the platform at link time.
	TrophyLevel int `json:"trophyLevel,omitempty"`
	TrophyTier  int `json:"trophyTier,omitempty"`
}

// LinkAccountRequest links a platform identity to the calling user.
type LinkAccountRequest struct {
	Credentials PlatformCredentials `json:"credentials"`
}

// LinkAccountResponse either confirms the link or reports that the platform
// identity already belongs to another profile and a merge is required.
type LinkAccountResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	RequiresMerge  bool   `json:"requiresMerge,omitempty"`
	ExistingUserID string `json:"existingUserId,omitempty"`
}

// ConfirmMergeRequest executes a merge the client has approved: everything
// owned by ExistingUserID moves to the authenticated caller.
type ConfirmMergeRequest struct {
	ExistingUserID string              `json:"existingUserId"`
	Credentials    PlatformCredentials `json:"credentials"`
}
