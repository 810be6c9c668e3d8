package model

type EmployeeRole string

const (
	RoleEmployee  EmployeeRole = "employee"
	RoleModerator EmployeeRole = "moderator"
	RoleAdmin     EmployeeRole = "admin"
)

const (
	MaxLevel     = 50
	DefaultKarma = 50
)

// swagger:model Employee
type Employee struct {
	BaseModel

	Email     string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string       `gorm:"size:255;not null" json:"-"`
	Name      string       `gorm:"size:100;not null" json:"name"`
	Role      EmployeeRole `gorm:"size:20;default:'employee'" json:"role"`
	AvatarURL string       `gorm:"size:255" json:"avatarUrl"`
	IsActive  bool         `gorm:"default:true" json:"isActive"`

	Level           int     `gorm:"default:1" json:"level"`
	Experience      int     `gorm:"default:0" json:"experience"`
	NextLevelXP     int     `gorm:"default:100" json:"nextLevelXp"`
	RemainingXP     int     `gorm:"default:100" json:"remainingXp"`
	ProgressPercent float64 `gorm:"default:0" json:"progressPercent"`
	Karma           int     `gorm:"default:50" json:"karma"`
	AcoinBalance    int     `gorm:"default:0" json:"acoinBalance"`
}

func (Employee) TableName() string {
	return "employees"
}
