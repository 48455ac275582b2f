// AngelaMos | 2026
// dto.go

package course

type CreateCourseRequest struct {
	Title       string `json:"title"       validate:"required,min=3,max=200"`
	Subtitle    string `json:"subtitle"    validate:"omitempty,max=300"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Category    string `json:"category"    validate:"required,max=100"`
	Level       string `json:"level"       validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       int64  `json:"price"       validate:"required,gte=0"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=3,max=200"`
	Subtitle    *string `json:"subtitle"    validate:"omitempty,max=300"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category"    validate:"omitempty,max=100"`
	Level       *string `json:"level"       validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *int64  `json:"price"       validate:"omitempty,gte=0"`
	IsPublished *bool   `json:"isPublished"`
}

type CreateLectureRequest struct {
	Title     string `json:"title"     validate:"required,min=1,max=200"`
	IsPreview bool   `json:"isPreview"`
}

// SearchFilter holds the normalized query parameters of a catalog
// search. Zero values mean "no constraint".
type SearchFilter struct {
	Query      string
	Categories []string
	Level      string
	PriceMin   *int64
	PriceMax   *int64
	SortBy     string
}

// LectureListResponse is the gated lecture list: lectures the caller
// may see plus flags describing why.
type LectureListResponse struct {
	Lectures     []Lecture `json:"lectures"`
	IsEnrolled   bool      `json:"isEnrolled"`
	IsInstructor bool      `json:"isInstructor"`
}
