package dto

// CreateInstanceRequest 新增副本，status为空时为unavailable
type CreateInstanceRequest struct {
	Imprint    string `json:"imprint" binding:"required,max=200" example:"Penguin Classics, 2003"`
	Status     string `json:"status" binding:"omitempty,loanstatus" example:"available"`
	BorrowerID *uint  `json:"borrower_id"`
}

// SetStatusRequest 状态变更
// 进入reserved/checked_out时需要borrower_id(预约转借出可省略)；其他状态不能带borrower_id
type SetStatusRequest struct {
	Status     string `json:"status" binding:"required,loanstatus" example:"checked_out"`
	BorrowerID *uint  `json:"borrower_id"`
}

// BorrowerRequest 借出/预约
type BorrowerRequest struct {
	BorrowerID uint `json:"borrower_id" binding:"required"`
}

// ImprintRequest 修改版本信息
type ImprintRequest struct {
	Imprint string `json:"imprint" binding:"required,max=200"`
}
