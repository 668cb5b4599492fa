package instance

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status 馆藏副本借阅状态
// 使用string存储，数据库里可读，也便于和消息事件的routing key对应
type Status string

const (
	StatusAvailable   Status = "available"   // 可借
	StatusReserved    Status = "reserved"    // 已预约
	StatusCheckedOut  Status = "checked_out" // 已借出
	StatusUnavailable Status = "unavailable" // 维护中/不可借(创建时的默认状态)
)

// AllStatuses 全部状态，顺序固定
func AllStatuses() []Status {
	return []Status{StatusAvailable, StatusReserved, StatusCheckedOut, StatusUnavailable}
}

// ParseStatus 解析状态字符串，空串视为默认状态
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusUnavailable, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Valid 是否为已定义的状态
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusCheckedOut, StatusUnavailable:
		return true
	}
	return false
}

// IsLoaned 预约或借出，此时必须有借阅人
func (s Status) IsLoaned() bool {
	return s == StatusReserved || s == StatusCheckedOut
}

// Label 中文展示名
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "可借"
	case StatusReserved:
		return "已预约"
	case StatusCheckedOut:
		return "已借出"
	case StatusUnavailable:
		return "维护中"
	default:
		return "未知状态"
	}
}

// BookInstance 馆藏副本实体
// 设计说明:
// 1. ID为UUID，创建时分配，之后不可变
// 2. BorrowerID只在reserved/checked_out时有值
// 3. 借阅人被删除时BorrowerID置空，状态保持不变
type BookInstance struct {
	ID         uuid.UUID
	BookID     uint
	Imprint    string // 版本信息(出版社、年份等)
	BorrowerID *uint
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBookInstance 创建副本(工厂方法)
// status为空时取默认值unavailable；初始即为预约/借出时必须给出借阅人
func NewBookInstance(bookID uint, imprint string, status Status, borrower *uint) (*BookInstance, error) {
	if status == "" {
		status = StatusUnavailable
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	imprint = strings.TrimSpace(imprint)
	if imprint == "" || utf8.RuneCountInString(imprint) > 200 {
		return nil, ErrInvalidImprint
	}
	if status.IsLoaned() && borrower == nil {
		return nil, ErrBorrowerRequired
	}
	if !status.IsLoaned() && borrower != nil {
		return nil, ErrBorrowerNotAllowed
	}

	now := time.Now()
	return &BookInstance{
		ID:         uuid.New(),
		BookID:     bookID,
		Imprint:    imprint,
		BorrowerID: borrower,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetImprint 修改版本信息
func (i *BookInstance) SetImprint(imprint string) error {
	imprint = strings.TrimSpace(imprint)
	if imprint == "" || utf8.RuneCountInString(imprint) > 200 {
		return ErrInvalidImprint
	}
	i.Imprint = imprint
	i.UpdatedAt = time.Now()
	return nil
}

// IsBorrowedBy 是否由该用户预约/借出
func (i *BookInstance) IsBorrowedBy(userID uint) bool {
	return i.BorrowerID != nil && *i.BorrowerID == userID
}

// =========================================
// 状态机
// =========================================

// transitions 严格模式下的合法流转
var transitions = map[Status][]Status{
	StatusAvailable:   {StatusReserved, StatusCheckedOut, StatusUnavailable}, // 借出/预约/下架维护
	StatusReserved:    {StatusCheckedOut, StatusAvailable},                   // 取书/取消预约
	StatusCheckedOut:  {StatusAvailable},                                     // 归还
	StatusUnavailable: {StatusAvailable},                                     // 上架
}

// Policy 状态流转策略
// Strict=false时任意状态间可以直接切换(兼容旧数据的宽松模式)，借阅人规则仍然生效
type Policy struct {
	Strict bool
}

// StrictPolicy 默认策略
func StrictPolicy() Policy {
	return Policy{Strict: true}
}

// CanTransition 检查from→to是否允许
func (p Policy) CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if !p.Strict {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo 状态流转
// 借阅人规则:
// - 进入reserved/checked_out必须有借阅人；borrower为nil时沿用已有借阅人(预约→借出)
// - 进入available/unavailable时清空借阅人，不允许传入borrower
func (i *BookInstance) TransitionTo(to Status, borrower *uint, p Policy) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if !p.CanTransition(i.Status, to) {
		return ErrInvalidStatusTransition
	}

	if to.IsLoaned() {
		switch {
		case borrower != nil:
			i.BorrowerID = borrower
		case i.Status.IsLoaned() && i.BorrowerID != nil:
			// 沿用
		default:
			return ErrBorrowerRequired
		}
	} else {
		if borrower != nil {
			return ErrBorrowerNotAllowed
		}
		i.BorrowerID = nil
	}

	i.Status = to
	i.UpdatedAt = time.Now()
	return nil
}
