package system

import (
	"sync"
)

// CountsPool переиспользует временные срезы счётчиков гистограмм
// (по одному пулу на каждое число бинов), чтобы не нагружать GC
// при построении опорных гистограмм соседства.
type CountsPool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &CountsPool{
	pools: make(map[int]*sync.Pool),
}

// GetCounts возвращает обнулённый срез длины bins из пула.
func GetCounts(bins int) []uint32 {
	return globalPool.Get(bins)
}

// PutCounts возвращает срез в пул для повторного использования.
func PutCounts(counts []uint32) {
	globalPool.Put(counts)
}

func (p *CountsPool) Get(bins int) []uint32 {
	p.mu.RLock()
	pool, exists := p.pools[bins]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[bins]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					s := make([]uint32, bins)
					return &s
				},
			}
			p.pools[bins] = pool
		}
		p.mu.Unlock()
	}

	counts := *pool.Get().(*[]uint32)
	clear(counts)
	return counts
}

func (p *CountsPool) Put(counts []uint32) {
	if counts == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[len(counts)]
	p.mu.RUnlock()

	if exists {
		pool.Put(&counts)
	}
}
