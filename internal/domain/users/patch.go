package users

import (
	"strings"

	"github.com/hackhub-dev/server/internal/domain/patch"
	"github.com/hackhub-dev/server/internal/sanitize"
	"github.com/hackhub-dev/server/internal/validation"
)

// NotificationsPatch updates notification channels independently.
type NotificationsPatch struct {
	Email patch.Field[bool] `json:"email"`
	Push  patch.Field[bool] `json:"push"`
}

// PreferencesPatch is a dotted-path update: preferences.theme,
// preferences.notifications.email and preferences.notifications.push change only when present.
type PreferencesPatch struct {
	Theme         patch.Field[Theme]  `json:"theme"`
	Notifications *NotificationsPatch `json:"notifications"`
}

func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	p.Theme.Apply(&prefs.Theme)
	if p.Notifications != nil {
		p.Notifications.Email.Apply(&prefs.Notifications.Email)
		p.Notifications.Push.Apply(&prefs.Notifications.Push)
	}
	return prefs
}

// Update lists the preference paths present in the patch.
func (p PreferencesPatch) Update() PreferencesUpdate {
	update := PreferencesUpdate{}
	if p.Theme.Set {
		update.Theme = &p.Theme.Value
	}
	if p.Notifications != nil {
		if p.Notifications.Email.Set {
			update.EmailNotifications = &p.Notifications.Email.Value
		}
		if p.Notifications.Push.Set {
			update.PushNotifications = &p.Notifications.Push.Value
		}
	}
	return update
}

// Empty reports whether the patch changes nothing.
func (p PreferencesPatch) Empty() bool {
	return !p.Theme.Set && (p.Notifications == nil || (!p.Notifications.Email.Set && !p.Notifications.Push.Set))
}

type SocialLinksPatch struct {
	GitHub   patch.Field[string] `json:"github"`
	LinkedIn patch.Field[string] `json:"linkedin"`
	Twitter  patch.Field[string] `json:"twitter"`
	Website  patch.Field[string] `json:"website"`
}

func (p SocialLinksPatch) Apply(links SocialLinks) SocialLinks {
	p.GitHub.Apply(&links.GitHub)
	p.LinkedIn.Apply(&links.LinkedIn)
	p.Twitter.Apply(&links.Twitter)
	p.Website.Apply(&links.Website)
	return links
}

// ProfilePatch is a sparse profile update. Absent fields are left untouched.
type ProfilePatch struct {
	FirstName   patch.Field[string] `json:"firstName"`
	LastName    patch.Field[string] `json:"lastName"`
	Bio         patch.Field[string] `json:"bio"`
	SocialLinks *SocialLinksPatch   `json:"socialLinks"`
	Preferences *PreferencesPatch   `json:"preferences"`
}

// Apply merges the patch into a copy of u and validates the merged record.
func (p ProfilePatch) Apply(u User) (User, error) {
	p.FirstName.Apply(&u.FirstName)
	p.LastName.Apply(&u.LastName)
	p.Bio.Apply(&u.Bio)
	if p.SocialLinks != nil {
		u.SocialLinks = p.SocialLinks.Apply(u.SocialLinks)
	}
	if p.Preferences != nil {
		u.Preferences = p.Preferences.Apply(u.Preferences)
	}

	normalize(&u)
	if err := validateProfile(u); err != nil {
		return User{}, err
	}
	return u, nil
}

func normalize(u *User) {
	u.FirstName = strings.TrimSpace(sanitize.Text(u.FirstName))
	u.LastName = strings.TrimSpace(sanitize.Text(u.LastName))
	u.Bio = strings.TrimSpace(sanitize.Text(u.Bio))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.SocialLinks.GitHub = strings.TrimSpace(u.SocialLinks.GitHub)
	u.SocialLinks.LinkedIn = strings.TrimSpace(u.SocialLinks.LinkedIn)
	u.SocialLinks.Twitter = strings.TrimSpace(u.SocialLinks.Twitter)
	u.SocialLinks.Website = strings.TrimSpace(u.SocialLinks.Website)
}

type profileRules struct {
	FirstName   string      `json:"firstName" validate:"required,min=2,max=50"`
	LastName    string      `json:"lastName" validate:"required,min=2,max=50"`
	Bio         string      `json:"bio" validate:"max=500"`
	SocialLinks SocialLinks `json:"socialLinks"`
	Preferences Preferences `json:"preferences"`
}

var profileMessages = validation.Messages{
	"firstName":            "First name must be between 2 and 50 characters",
	"lastName":             "Last name must be between 2 and 50 characters",
	"bio":                  "Bio cannot exceed 500 characters",
	"socialLinks.github":   "GitHub URL must be valid",
	"socialLinks.linkedin": "LinkedIn URL must be valid",
	"socialLinks.twitter":  "Twitter URL must be valid",
	"socialLinks.website":  "Website URL must be valid",
	"preferences.theme":    "Theme must be light, dark, or auto",
}

func validateProfile(u User) error {
	return validation.Struct(profileRules{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Bio:         u.Bio,
		SocialLinks: u.SocialLinks,
		Preferences: u.Preferences,
	}, profileMessages)
}

func validatePreferences(p Preferences) error {
	var errs validation.Errors
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		errs.Add("theme", "Theme must be light, dark, or auto")
	}
	return errs.Err()
}

// SignupInput is the payload of a new account.
type SignupInput struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

var signupMessages = validation.Messages{
	"firstName": "First name must be between 2 and 50 characters",
	"lastName":  "Last name must be between 2 and 50 characters",
	"email":     "Please provide a valid email",
	"password":  "Password must be between 6 and 72 characters",
}

func (in *SignupInput) normalize() {
	in.FirstName = strings.TrimSpace(sanitize.Text(in.FirstName))
	in.LastName = strings.TrimSpace(sanitize.Text(in.LastName))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}
