package dto

// SortItem 排序调整项
type SortItem struct {
	ID        int64 `json:"id" binding:"required"`
	SortOrder int   `json:"sort_order"`
}

// ReorderRequest 批量排序请求
type ReorderRequest struct {
	Items []SortItem `json:"items" binding:"required,min=1,dive"`
}

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// PagedResponse 分页响应
type PagedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
