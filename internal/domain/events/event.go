package events

import "time"

type Category string

const (
	CategoryWebDevelopment    Category = "web-development"
	CategoryMobileDevelopment Category = "mobile-development"
	CategoryAIML              Category = "ai-ml"
	CategoryBlockchain        Category = "blockchain"
	CategoryCybersecurity     Category = "cybersecurity"
	CategoryIoT               Category = "iot"
	CategoryOther             Category = "other"
)

var allowedCategories = []string{
	string(CategoryWebDevelopment),
	string(CategoryMobileDevelopment),
	string(CategoryAIML),
	string(CategoryBlockchain),
	string(CategoryCybersecurity),
	string(CategoryIoT),
	string(CategoryOther),
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var allowedDifficulties = []string{
	string(DifficultyBeginner),
	string(DifficultyIntermediate),
	string(DifficultyAdvanced),
}

type LocationType string

const (
	LocationOnline  LocationType = "online"
	LocationOffline LocationType = "offline"
	LocationHybrid  LocationType = "hybrid"
)

var allowedLocationTypes = []string{
	string(LocationOnline),
	string(LocationOffline),
	string(LocationHybrid),
}

type Status string

const (
	StatusDraft              Status = "draft"
	StatusPublished          Status = "published"
	StatusRegistrationOpen   Status = "registration-open"
	StatusRegistrationClosed Status = "registration-closed"
	StatusOngoing            Status = "ongoing"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

var allowedStatuses = []string{
	string(StatusDraft),
	string(StatusPublished),
	string(StatusRegistrationOpen),
	string(StatusRegistrationClosed),
	string(StatusOngoing),
	string(StatusCompleted),
	string(StatusCancelled),
}

// Statuses a public listing may filter on. Drafts and cancelled events are not listable.
var listableStatuses = []string{
	string(StatusPublished),
	string(StatusRegistrationOpen),
	string(StatusRegistrationClosed),
	string(StatusOngoing),
	string(StatusCompleted),
}

// Statuses surfaced by the featured and upcoming feeds.
var promotedStatuses = []Status{StatusPublished, StatusRegistrationOpen}

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type Location struct {
	Type        LocationType `json:"type" validate:"oneof=online offline hybrid"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Statistics struct {
	Views         int `json:"views"`
	Registrations int `json:"registrations"`
	Submissions   int `json:"submissions"`
}

// Organizer is the public summary of a user listed as an event organizer.
type Organizer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Prize struct {
	Rank        string  `json:"rank" validate:"omitempty,oneof=1st 2nd 3rd honorable-mention"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Sponsor struct {
	Name         string `json:"name"`
	Logo         string `json:"logo,omitempty" validate:"omitempty,weburl"`
	Website      string `json:"website,omitempty" validate:"omitempty,weburl"`
	Contribution string `json:"contribution,omitempty"`
}

type Mentor struct {
	Name      string `json:"name"`
	Expertise string `json:"expertise,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,weburl"`
}

type Resource struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty" validate:"omitempty,weburl"`
	Type        string `json:"type,omitempty" validate:"omitempty,oneof=documentation video tutorial api other"`
}

type AgeRange struct {
	Min *int `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max *int `json:"max,omitempty" validate:"omitempty,gte=0"`
}

type Requirements struct {
	MinTeamSize    int       `json:"minTeamSize" validate:"gte=1"`
	MaxTeamSize    int       `json:"maxTeamSize" validate:"gtefield=MinTeamSize"`
	AgeRestriction *AgeRange `json:"ageRestriction,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	Equipment      []string  `json:"equipment,omitempty"`
}

type Milestone struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Type        string     `json:"type,omitempty" validate:"omitempty,oneof=registration kickoff checkpoint submission judging awards"`
}

type Contact struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty" validate:"omitempty,weburl"`
}

type SocialMedia struct {
	Twitter   string `json:"twitter,omitempty" validate:"omitempty,weburl"`
	Facebook  string `json:"facebook,omitempty" validate:"omitempty,weburl"`
	Instagram string `json:"instagram,omitempty" validate:"omitempty,weburl"`
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,weburl"`
}

// Details groups the descriptive content of an event that is stored as one document.
type Details struct {
	Prizes       []Prize      `json:"prizes" validate:"dive"`
	Sponsors     []Sponsor    `json:"sponsors" validate:"dive"`
	Mentors      []Mentor     `json:"mentors" validate:"dive"`
	Resources    []Resource   `json:"resources" validate:"dive"`
	Rules        []string     `json:"rules"`
	Gallery      []string     `json:"gallery" validate:"dive,weburl"`
	Requirements Requirements `json:"requirements"`
	Timeline     []Milestone  `json:"timeline" validate:"dive"`
	Contact      Contact      `json:"contact"`
	SocialMedia  SocialMedia  `json:"socialMedia"`
}

// DefaultDetails returns the details of a freshly created event.
func DefaultDetails() Details {
	return Details{Requirements: Requirements{MinTeamSize: 1, MaxTeamSize: 4}}
}

type Event struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	ShortDescription     string      `json:"shortDescription"`
	StartDate            time.Time   `json:"startDate"`
	EndDate              time.Time   `json:"endDate"`
	RegistrationDeadline time.Time   `json:"registrationDeadline"`
	Location             Location    `json:"location"`
	MaxParticipants      *int        `json:"maxParticipants"`
	CurrentParticipants  int         `json:"currentParticipants"`
	Categories           []Category  `json:"categories"`
	Difficulty           Difficulty  `json:"difficulty"`
	Tags                 []string    `json:"tags"`
	Status               Status      `json:"status"`
	Featured             bool        `json:"featured"`
	CoverImage           string      `json:"coverImage,omitempty"`
	RegistrationFee      float64     `json:"registrationFee"`
	Currency             string      `json:"currency"`
	OrganizerIDs         []string    `json:"-"`
	Organizers           []Organizer `json:"organizers"`
	Details              Details     `json:"details"`
	Statistics           Statistics  `json:"statistics"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// IsOrganizer reports whether userID is listed among the event organizers.
func (e Event) IsOrganizer(userID string) bool {
	for _, id := range e.OrganizerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
