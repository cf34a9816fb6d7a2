package hfp

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HfIndicator HF 指示器定义（Bluetooth Assigned Numbers）：ID 与取值区间
type HfIndicator struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	Min  int    `yaml:"min"`
	Max  int    `yaml:"max"`
}

// HfIndicatorRegistry AG 支持的 HF 指示器登记表，可由 YAML 扩展
type HfIndicatorRegistry struct {
	Indicators []HfIndicator `yaml:"indicators"`
}

// DefaultHfIndicatorRegistry 返回默认登记表
func DefaultHfIndicatorRegistry() *HfIndicatorRegistry {
	return &HfIndicatorRegistry{
		Indicators: []HfIndicator{
			{ID: 1, Name: "Enhanced Safety", Min: 0, Max: 1},
			{ID: 2, Name: "Battery Level", Min: 0, Max: 100},
		},
	}
}

// LoadHfIndicatorRegistry 从 YAML 文件加载登记表
func LoadHfIndicatorRegistry(path string) (*HfIndicatorRegistry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hf indicator registry: %w", err)
	}
	var r HfIndicatorRegistry
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("unmarshal hf indicator registry: %w", err)
	}
	return &r, nil
}

// Lookup 按 ID 查找指示器定义
func (r *HfIndicatorRegistry) Lookup(id int) (HfIndicator, bool) {
	if r == nil {
		return HfIndicator{}, false
	}
	for _, ind := range r.Indicators {
		if ind.ID == id {
			return ind, true
		}
	}
	return HfIndicator{}, false
}

// IDs 返回全部已登记 ID（升序）
func (r *HfIndicatorRegistry) IDs() []int {
	if r == nil {
		return nil
	}
	ids := make([]int, 0, len(r.Indicators))
	for _, ind := range r.Indicators {
		ids = append(ids, ind.ID)
	}
	sort.Ints(ids)
	return ids
}

// Merge 合并另一张登记表，同 ID 覆盖
func (r *HfIndicatorRegistry) Merge(other *HfIndicatorRegistry) {
	if r == nil || other == nil {
		return
	}
	for _, ind := range other.Indicators {
		replaced := false
		for i := range r.Indicators {
			if r.Indicators[i].ID == ind.ID {
				r.Indicators[i] = ind
				replaced = true
				break
			}
		}
		if !replaced {
			r.Indicators = append(r.Indicators, ind)
		}
	}
}
