package model

type CourseType string

const (
	StudentCourse  CourseType = "Student"
	BusinessCourse CourseType = "Business"
)

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentAudio ContentType = "audio"
	ContentPDF   ContentType = "pdf"
	ContentImage ContentType = "image"
	ContentTest  ContentType = "test"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentAudio, ContentPDF, ContentImage, ContentTest:
		return true
	}
	return false
}

type Question struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Answer         string   `json:"answer"`
	SelectedAnswer string   `json:"selectedAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

// Content is the leaf of the three-level curriculum hierarchy.
// Duration is in hours.
type Content struct {
	Type      ContentType `json:"type"`
	Name      string      `json:"name"`
	Duration  float64     `json:"duration"`
	URL       string      `json:"url"`
	FileName  string      `json:"fileName,omitempty"`
	Completed bool        `json:"completed"`
	Score     int         `json:"score"`
	Questions []Question  `json:"questions"`
}

type Topic struct {
	// TopicID is generated once per student at snapshot time. It is empty
	// on the catalog template.
	TopicID   string    `json:"topicId,omitempty"`
	Title     string    `json:"topicTitle"`
	Completed bool      `json:"completed"`
	Contents  []Content `json:"contents"`
}

type Module struct {
	Title       string  `json:"moduleTitle"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Topics      []Topic `json:"topics"`
}

// Course is the immutable catalog template a student enrolls against.
// The curriculum is kept as a JSON document column: enrollment takes a
// point-in-time copy of it, so there is nothing to join against later.
// swagger:model Course
type Course struct {
	BaseModel
	CourseID         string     `gorm:"uniqueIndex;size:36;not null" json:"courseId"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Subtitle         string     `gorm:"size:255" json:"subtitle"`
	Category         string     `gorm:"size:100;index" json:"category"`
	Type             CourseType `gorm:"type:enum('Student','Business');not null;index" json:"type"`
	Image            string     `gorm:"size:512" json:"image"`
	PreviewVideo     string     `gorm:"size:512" json:"previewVideo,omitempty"`
	Rating           float64    `gorm:"default:0" json:"rating"`
	ReviewsCount     int        `gorm:"default:0" json:"reviewsCount"`
	StudentsEnrolled int        `gorm:"default:0" json:"studentsEnrolled"`
	Price            float64    `json:"price,omitempty"`
	SalePrice        float64    `json:"salePrice,omitempty"`
	Description      string     `gorm:"type:text" json:"description"`
	WhatYouWillLearn []string   `gorm:"serializer:json" json:"whatYouWillLearn,omitempty"`
	Topics           []string   `gorm:"serializer:json" json:"topics,omitempty"`
	Includes         []string   `gorm:"serializer:json" json:"includes,omitempty"`
	Requirements     []string   `gorm:"serializer:json" json:"requirements,omitempty"`
	Modules          []Module   `gorm:"serializer:json" json:"modules,omitempty"`
	DownloadBrochure string     `gorm:"size:512" json:"downloadBrochure,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// TotalHours sums the durations of every content item in the template
// curriculum.
func (c *Course) TotalHours() float64 {
	var total float64
	for _, m := range c.Modules {
		for _, t := range m.Topics {
			for _, ct := range t.Contents {
				total += ct.Duration
			}
		}
	}
	return total
}

// StripByType clears the fields that do not apply to the course category.
// Business courses carry no student curriculum; student courses carry no
// brochure.
func (c *Course) StripByType() {
	switch c.Type {
	case BusinessCourse:
		c.PreviewVideo = ""
		c.WhatYouWillLearn = nil
		c.Modules = nil
		c.Topics = nil
		c.Requirements = nil
		c.Price = 0
		c.SalePrice = 0
	case StudentCourse:
		c.DownloadBrochure = ""
	}
}
