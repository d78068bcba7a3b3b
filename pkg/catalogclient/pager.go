package catalogclient

import (
	"context"
	"net/url"
	"sync"
)

// Status — состояние пейджера.
type Status string

const (
	// StatusIdle — загрузок ещё не было.
	StatusIdle Status = "idle"
	// StatusLoading — запрос страницы в полёте.
	StatusLoading Status = "loading"
	// StatusSuccess — последняя загрузка завершилась успешно.
	StatusSuccess Status = "success"
	// StatusError — последняя загрузка завершилась ошибкой.
	StatusError Status = "error"
)

// Pager накапливает страницы одной разновидности списка и ходит по ним
// курсорами. Ошибки загрузки отдаются вызывающему как есть, без повторов.
type Pager struct {
	client   *Client
	endpoint Endpoint
	limit    int

	mu           sync.Mutex
	filter       url.Values
	pages        []*Page
	flat         []Item
	dirty        bool
	status       Status
	lastErr      error
	enabled      bool
	keepPrevious bool
}

// PagerOption настраивает Pager при создании.
type PagerOption func(*Pager)

// WithFilter задаёт начальный фильтр выдачи.
func WithFilter(filter url.Values) PagerOption {
	return func(p *Pager) {
		p.filter = cloneValues(filter)
	}
}

// WithLimit задаёт размер страницы.
func WithLimit(limit int) PagerOption {
	return func(p *Pager) {
		p.limit = limit
	}
}

// WithKeepPrevious оставляет прежние элементы видимыми после смены
// фильтра до первой успешной загрузки.
func WithKeepPrevious() PagerOption {
	return func(p *Pager) {
		p.keepPrevious = true
	}
}

// WithDisabled создаёт выключенный пейджер: Next и Prev ничего не делают,
// пока его не включат через SetEnabled.
func WithDisabled() PagerOption {
	return func(p *Pager) {
		p.enabled = false
	}
}

// NewPager создаёт пейджер списка endpoint поверх клиента.
func NewPager(client *Client, endpoint Endpoint, opts ...PagerOption) *Pager {
	p := &Pager{
		client:   client,
		endpoint: endpoint,
		status:   StatusIdle,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next загружает следующую страницу: по nextCursor последней загруженной,
// либо первую (курсор 0), если страниц ещё нет. На последней странице
// вызов ничего не делает.
func (p *Pager) Next(ctx context.Context) error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return nil
	}
	cursor := 0
	if last := p.lastPage(); last != nil {
		if last.NextCursor == nil {
			p.mu.Unlock()
			return nil
		}
		cursor = *last.NextCursor
	}
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pages = append(p.pages, page)
	p.dirty = true
	p.mu.Unlock()
	return nil
}

// Prev загружает предыдущую страницу: по prevCursor первой загруженной,
// либо первую (курсор 0), если страниц ещё нет. На первой странице
// вызов ничего не делает.
func (p *Pager) Prev(ctx context.Context) error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return nil
	}
	cursor := 0
	if first := p.firstPage(); first != nil {
		if first.PrevCursor == nil {
			p.mu.Unlock()
			return nil
		}
		cursor = *first.PrevCursor
	}
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pages = append([]*Page{page}, p.pages...)
	p.dirty = true
	p.mu.Unlock()
	return nil
}

// fetch загружает страницу по курсору и переводит статус пейджера.
func (p *Pager) fetch(ctx context.Context, cursor int) (*Page, error) {
	p.mu.Lock()
	p.status = StatusLoading
	filter := cloneValues(p.filter)
	p.mu.Unlock()

	page, err := p.client.ListPage(ctx, p.endpoint, filter, cursor, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status = StatusError
		p.lastErr = err
		return nil, err
	}
	p.status = StatusSuccess
	p.lastErr = nil
	return page, nil
}

// Items возвращает элементы всех загруженных страниц в порядке страниц.
// Срез пересобирается только после изменения набора страниц.
func (p *Pager) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		return p.flat
	}
	total := 0
	for _, page := range p.pages {
		if page != nil {
			total += len(page.Items)
		}
	}
	flat := make([]Item, 0, total)
	for _, page := range p.pages {
		if page == nil {
			continue
		}
		flat = append(flat, page.Items...)
	}
	p.flat = flat
	p.dirty = false
	return p.flat
}

// SetFilter заменяет фильтр и сбрасывает загруженные страницы.
// С опцией keepPrevious прежние элементы остаются видимыми до следующей
// успешной загрузки.
func (p *Pager) SetFilter(filter url.Values) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = cloneValues(filter)
	p.pages = nil
	p.status = StatusIdle
	p.lastErr = nil
	if p.keepPrevious {
		// flat хранит прежний снимок, dirty не взводим
		p.dirty = false
		return
	}
	p.flat = nil
	p.dirty = false
}

// SetEnabled включает или выключает пейджер.
func (p *Pager) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Enabled сообщает, включён ли пейджер.
func (p *Pager) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Status возвращает текущее состояние пейджера.
func (p *Pager) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err возвращает ошибку последней неудачной загрузки.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Pager) lastPage() *Page {
	for i := len(p.pages) - 1; i >= 0; i-- {
		if p.pages[i] != nil {
			return p.pages[i]
		}
	}
	return nil
}

func (p *Pager) firstPage() *Page {
	for _, page := range p.pages {
		if page != nil {
			return page
		}
	}
	return nil
}

func cloneValues(values url.Values) url.Values {
	out := url.Values{}
	for key, vals := range values {
		for _, v := range vals {
			out.Add(key, v)
		}
	}
	return out
}
