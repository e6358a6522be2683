package utils

// Pagination представляет расширенную модель для пагинации
type Pagination struct {
	Page       int    `json:"page"`        // Номер страницы (начиная с 1)
	PageSize   int    `json:"page_size"`   // Размер страницы
	TotalItems int64  `json:"total_items"` // Общее количество элементов
	TotalPages int    `json:"total_pages"` // Общее количество страниц
	SortKey    string `json:"sort_key"`    // Ключ сортировки
	HasNext    bool   `json:"has_next"`    // Есть ли следующая страница
	HasPrev    bool   `json:"has_prev"`    // Есть ли предыдущая страница
}

// NewPagination создает новый экземпляр Pagination с заданными параметрами
func NewPagination(page, pageSize int, sortKey string) *Pagination {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 12
	}

	return &Pagination{
		Page:     page,
		PageSize: pageSize,
		SortKey:  sortKey,
	}
}

// SetTotal устанавливает общее количество элементов и пересчитывает зависимые
// поля. Если текущая страница оказалась за пределами диапазона, она
// сбрасывается на первую
func (p *Pagination) SetTotal(totalItems int64) {
	p.TotalItems = totalItems
	p.TotalPages = int((totalItems + int64(p.PageSize) - 1) / int64(p.PageSize))

	if p.Page > p.TotalPages {
		p.Page = 1
	}

	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
}

// Offset возвращает смещение первого элемента текущей страницы
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PagedResult представляет результат запроса с пагинацией
type PagedResult struct {
	Items      interface{} `json:"items"`      // Элементы текущей страницы
	Pagination *Pagination `json:"pagination"` // Информация о пагинации
}

// NewPagedResult создает новый результат с пагинацией
func NewPagedResult(items interface{}, pagination *Pagination) *PagedResult {
	return &PagedResult{
		Items:      items,
		Pagination: pagination,
	}
}
