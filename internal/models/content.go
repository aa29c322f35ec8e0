package models

import (
	"time"
)

// Person is an embedded author, instructor or speaker reference.
type Person struct {
	ID     string `json:"id,omitempty" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar"`
	Title  string `json:"title,omitempty" yaml:"title"`
}

// Post is a community feed post.
type Post struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position  int       `gorm:"index" json:"-" yaml:"-"`
	Content   string    `gorm:"type:text" json:"content" yaml:"content"`
	Author    *Person   `gorm:"type:text;serializer:json" json:"author,omitempty" yaml:"author"`
	Tags      []string  `gorm:"type:text;serializer:json" json:"tags" yaml:"tags"`
	Reactions int       `gorm:"default:0" json:"reactions" yaml:"reactions"`
	Comments  int       `gorm:"default:0" json:"comments" yaml:"comments"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// TableName specifies the table name for Post model.
func (Post) TableName() string {
	return "posts"
}

// Paper is a research library entry.
type Paper struct {
	ID        string   `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position  int      `gorm:"index" json:"-" yaml:"-"`
	Title     string   `gorm:"type:text" json:"title" yaml:"title"`
	Abstract  string   `gorm:"type:text" json:"abstract" yaml:"abstract"`
	Authors   []Person `gorm:"type:text;serializer:json" json:"authors" yaml:"authors"`
	Keywords  []string `gorm:"type:text;serializer:json" json:"keywords" yaml:"keywords"`
	Journal   string   `gorm:"size:255" json:"journal" yaml:"journal"`
	Year      int      `json:"year" yaml:"year"`
	Citations int      `gorm:"default:0" json:"citations" yaml:"citations"`
	Rating    float64  `gorm:"default:0" json:"rating" yaml:"rating"`
}

// TableName specifies the table name for Paper model.
func (Paper) TableName() string {
	return "papers"
}

// Course is a learning course.
type Course struct {
	ID          string   `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position    int      `gorm:"index" json:"-" yaml:"-"`
	Title       string   `gorm:"type:text" json:"title" yaml:"title"`
	Description string   `gorm:"type:text" json:"description" yaml:"description"`
	Instructor  *Person  `gorm:"type:text;serializer:json" json:"instructor,omitempty" yaml:"instructor"`
	Topics      []string `gorm:"type:text;serializer:json" json:"topics" yaml:"topics"`
	Duration    string   `gorm:"size:64" json:"duration" yaml:"duration"`
	Level       string   `gorm:"size:64" json:"level" yaml:"level"`
	Enrolled    int      `gorm:"default:0" json:"enrolled" yaml:"enrolled"`
	Rating      float64  `gorm:"default:0" json:"rating" yaml:"rating"`
}

// TableName specifies the table name for Course model.
func (Course) TableName() string {
	return "courses"
}

// Professional is a member profile listed in the network directory.
type Professional struct {
	ID              string   `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position        int      `gorm:"index" json:"-" yaml:"-"`
	Name            string   `gorm:"size:255" json:"name" yaml:"name"`
	Title           string   `gorm:"size:255" json:"title" yaml:"title"`
	Institution     string   `gorm:"size:255" json:"institution" yaml:"institution"`
	Expertise       []string `gorm:"type:text;serializer:json" json:"expertise" yaml:"expertise"`
	Bio             string   `gorm:"type:text" json:"bio" yaml:"bio"`
	Avatar          string   `gorm:"type:text" json:"avatar" yaml:"avatar"`
	ExperienceLevel string   `gorm:"size:64" json:"experience_level" yaml:"experience_level"`
}

// TableName specifies the table name for Professional model.
func (Professional) TableName() string {
	return "professionals"
}

// VoiceRoom is an audio discussion room.
type VoiceRoom struct {
	ID            string   `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position      int      `gorm:"index" json:"-" yaml:"-"`
	Title         string   `gorm:"size:255" json:"title" yaml:"title"`
	Description   string   `gorm:"type:text" json:"description" yaml:"description"`
	Category      string   `gorm:"size:100" json:"category" yaml:"category"`
	Tags          []string `gorm:"type:text;serializer:json" json:"tags" yaml:"tags"`
	Status        string   `gorm:"size:32" json:"status" yaml:"status"` // "live", "scheduled", "ended"
	Speakers      []Person `gorm:"type:text;serializer:json" json:"speakers" yaml:"speakers"`
	ListenerCount int      `gorm:"default:0" json:"listener_count" yaml:"listener_count"`
}

// TableName specifies the table name for VoiceRoom model.
func (VoiceRoom) TableName() string {
	return "voice_rooms"
}

// VirtualSpace is a shared virtual venue.
type VirtualSpace struct {
	ID               string   `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Position         int      `gorm:"index" json:"-" yaml:"-"`
	Name             string   `gorm:"size:255" json:"name" yaml:"name"`
	Description      string   `gorm:"type:text" json:"description" yaml:"description"`
	Type             string   `gorm:"size:64" json:"type" yaml:"type"`
	Features         []string `gorm:"type:text;serializer:json" json:"features" yaml:"features"`
	Tags             []string `gorm:"type:text;serializer:json" json:"tags" yaml:"tags"`
	Capacity         int      `gorm:"default:0" json:"capacity" yaml:"capacity"`
	CurrentOccupancy int      `gorm:"default:0" json:"current_occupancy" yaml:"current_occupancy"`
	Thumbnail        string   `gorm:"type:text" json:"thumbnail" yaml:"thumbnail"`
}

// TableName specifies the table name for VirtualSpace model.
func (VirtualSpace) TableName() string {
	return "virtual_spaces"
}
