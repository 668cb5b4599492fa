package mysql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. 模型之间不声明关联字段，关联由仓储显式查询，外键行为(置空/限制)由仓储在事务中实现
// 3. Repository负责模型与领域实体之间的转换

// UserModel 用户(同时是借阅人)
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

func (UserModel) TableName() string {
	return "users"
}

// UserCapabilityModel 用户能力授予
type UserCapabilityModel struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false;comment:用户ID"`
	Capability string    `gorm:"primaryKey;size:100;comment:能力名称"`
	CreatedAt  time.Time `gorm:"comment:授予时间"`
}

func (UserCapabilityModel) TableName() string {
	return "user_capabilities"
}

// AuthorModel 作者
type AuthorModel struct {
	ID          uint       `gorm:"primaryKey"`
	FirstName   string     `gorm:"index:idx_author_name,priority:2;size:100;not null;comment:名"`
	LastName    string     `gorm:"index:idx_author_name,priority:1;size:200;not null;comment:姓"`
	DateOfBirth *time.Time `gorm:"comment:出生日期"`
	DateOfDeath *time.Time `gorm:"comment:去世日期"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AuthorModel) TableName() string {
	return "authors"
}

// GenreModel 类型
type GenreModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"index;size:200;not null;comment:类型名称"`
	CreatedAt time.Time
}

func (GenreModel) TableName() string {
	return "genres"
}

// BookModel 图书
// ISBN有唯一索引；AuthorID可为空(作者删除时置空)
type BookModel struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"index;size:200;not null;comment:书名"`
	ISBN        string     `gorm:"column:isbn;uniqueIndex;size:13;not null;comment:ISBN号"`
	Description string     `gorm:"type:text;comment:图书描述"`
	CoverImage  string     `gorm:"size:500;comment:封面图片引用"`
	PublishedOn *time.Time `gorm:"comment:出版日期"`
	AuthorID    *uint      `gorm:"index;comment:作者ID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// BookGenreModel 图书-类型关联表
type BookGenreModel struct {
	BookID  uint `gorm:"primaryKey;autoIncrement:false"`
	GenreID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (BookGenreModel) TableName() string {
	return "book_genres"
}

// BookInstanceModel 馆藏副本
// 1. ID为UUID(char(36))
// 2. (borrower_id, status)复合索引支撑"我的借阅"查询
type BookInstanceModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	BookID     uint      `gorm:"index;not null;comment:图书ID"`
	Imprint    string    `gorm:"size:200;not null;comment:版本信息"`
	BorrowerID *uint     `gorm:"index:idx_borrower_status,priority:1;comment:借阅人ID"`
	Status     string    `gorm:"index:idx_borrower_status,priority:2;size:20;not null;default:unavailable;comment:状态"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (BookInstanceModel) TableName() string {
	return "book_instances"
}

// ReviewModel 书评
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index:idx_review_book_date,priority:1;not null;comment:图书ID"`
	Writer    string    `gorm:"size:200;not null;comment:署名"`
	Body      string    `gorm:"type:text;comment:内容"`
	Stars     int       `gorm:"not null;comment:星级"`
	WrittenAt time.Time `gorm:"index:idx_review_book_date,priority:2;not null;comment:撰写时间"`
	CreatedAt time.Time
}

func (ReviewModel) TableName() string {
	return "reviews"
}
