package domain

// InquiryStatus tracks how far a contact-form inquiry has been handled
type InquiryStatus string

const (
	InquiryNew     InquiryStatus = "New"
	InquiryRead    InquiryStatus = "Read"
	InquiryReplied InquiryStatus = "Replied"
)

var InquiryStatuses = []InquiryStatus{InquiryNew, InquiryRead, InquiryReplied}

func (s InquiryStatus) Valid() bool {
	for _, status := range InquiryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Inquiry is a message left through the storefront contact form
type Inquiry struct {
	ID        string        `json:"_id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    InquiryStatus `json:"status"`
	CreatedAt Timestamp     `json:"createdAt"`
}

// BlogStatus controls whether a post is visible on the storefront
type BlogStatus string

const (
	BlogDraft     BlogStatus = "Draft"
	BlogPublished BlogStatus = "Published"
)

var BlogStatuses = []BlogStatus{BlogDraft, BlogPublished}

func (s BlogStatus) Valid() bool {
	return s == BlogDraft || s == BlogPublished
}

// DefaultBlogAuthor is used when a post is saved without an author.
const DefaultBlogAuthor = "Admin"

// Blog is a storefront article
type Blog struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags"`
	Status    BlogStatus `json:"status"`
	Author    string     `json:"author"`
	Image     string     `json:"image,omitempty"`
	CreatedAt Timestamp  `json:"createdAt"`
}

// Slider is a homepage carousel slide
type Slider struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Product     string `json:"product"`
	Tag         string `json:"tag"`
	Image       string `json:"image,omitempty"`
}

// Logo is the storefront logo asset
type Logo struct {
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`
}

// SaleBanner is the promotional banner shown above the storefront
type SaleBanner struct {
	ImageURL string `json:"imageUrl"`
}

// ContactSettings are the storefront's published contact details
type ContactSettings struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
