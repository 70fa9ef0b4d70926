package model

// Course 课程表 — 对应 courses
// 课程所有者隐式拥有成员身份，即使不在 Members 中
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title       string `gorm:"type:varchar(100);not null"                     json:"title"`
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Description string `gorm:"type:varchar(500);not null;default:''"          json:"description"`
	OwnerID     string `gorm:"type:uuid;not null"                             json:"owner_id"`
	BaseModel

	// 关联
	Owner   *User  `gorm:"foreignKey:OwnerID;references:UserID"                                                                json:"owner,omitempty"`
	Members []User `gorm:"many2many:course_members;foreignKey:CourseID;joinForeignKey:CourseID;references:UserID;joinReferences:UserID" json:"members,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// HasMember 判断用户是否在显式成员列表中
func (c *Course) HasMember(userID string) bool {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return true
		}
	}
	return false
}

// CourseMember 课程成员关联表 — 对应 course_members
type CourseMember struct {
	CourseID string `gorm:"type:uuid;primaryKey"`
	UserID   string `gorm:"type:uuid;primaryKey"`
}

// TableName 指定表名
func (CourseMember) TableName() string { return "course_members" }
