package db

import "time"

// AccountType is the privilege ladder. Higher values grant strictly more
// access; Developer is deliberately far above Administrator so new levels
// can be inserted later without renumbering.
type AccountType int

const (
	TypePlayer        AccountType = 1
	TypeMaster        AccountType = 2
	TypeAdministrator AccountType = 3
	TypeDeveloper     AccountType = 99
)

func (t AccountType) String() string {
	switch t {
	case TypePlayer:
		return "Player"
	case TypeMaster:
		return "Master"
	case TypeAdministrator:
		return "Administrator"
	case TypeDeveloper:
		return "Developer"
	}
	return "Unknown"
}

// Valid reports whether t is one of the defined privilege levels.
func (t AccountType) Valid() bool {
	switch t {
	case TypePlayer, TypeMaster, TypeAdministrator, TypeDeveloper:
		return true
	}
	return false
}

type Account struct {
	ID              int64
	Name            string
	Username        string
	PasswordHash    string
	ProfileImageURL string
	CreatedAt       time.Time
	BirthDate       time.Time
	AccountType     AccountType
	CampaignID      int64 // primary campaign preference, 0 when unset
}

type Campaign struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	CreatorID   int64
}

type News struct {
	ID          int64
	AuthorID    int64
	CampaignID  int64
	Title       string
	Content     string
	AuthorName  string
	PublishedAt time.Time
	Category    string
	ImageURL    string
}

type Settings struct {
	ID                int64
	CampaignID        int64
	DiscordWebhookURL string
	VTTURL            string
	ThemePrimary      string
	ThemeSecondary    string
	FontFamily        string
	BannerURL         string
	ThumbnailURL      string
	CallToAction      string
	ShowSessionClock  bool
}

type GlobalSettings struct {
	ID                 int64
	MaintenanceActive  bool
	MaintenanceMessage string
}

// News categories offered in the editor. Category is stored as free text,
// so old rows survive renames here.
const (
	CategoryUpdate     = "Update"
	CategoryEvent      = "Event"
	CategorySessionLog = "Session Log"
	CategoryRumor      = "Rumor"
)

var Categories = []string{CategoryUpdate, CategoryEvent, CategorySessionLog, CategoryRumor}

// Defaults for per-campaign settings when a row is created lazily.
const (
	DefaultThemePrimary   = "#8e0000"
	DefaultThemeSecondary = "#3a0000"
	DefaultFontFamily     = "'Segoe UI', sans-serif"
	DefaultCallToAction   = "A new adventure begins."
)
