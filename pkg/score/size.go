package score

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/mchmarny/modelscore/pkg/hub"
)

// Per-device memory budgets in GB. A model whose estimated weight footprint
// exceeds the budget scores 0 for that device.
var deviceBudgetsGB = map[string]float64{
	"raspberry_pi": 2.0,
	"jetson_nano":  3.0,
	"desktop_pc":   20.0,
	"aws_server":   60.0,
}

// Config fields that may carry a parameter count, checked in order.
var paramCountFields = []string{
	"num_parameters",
	"n_params",
	"total_params",
	"num_params",
}

var nameParamPattern = regexp.MustCompile(`(\d+\.?\d*)[bB]\b`)

// dtypeDigits pulls the bit width out of identifiers like float16, bf16,
// int8 or F32.
var dtypeDigits = regexp.MustCompile(`(\d+)`)

// SizeMetric estimates the weight footprint from parameter count and dtype
// width and rates it against each device budget. No parameter evidence at
// all yields a zero breakdown across every device so the composite still
// sees the expected mapping shape.
type SizeMetric struct{}

func (sm *SizeMetric) Name() string {
	return MetricSize
}

func (sm *SizeMetric) Evaluate(ctx context.Context, m *Model) Score {
	meta := m.HubMeta(ctx)
	devices := make(map[string]float64, len(deviceBudgetsGB))
	if meta == nil {
		for device := range deviceBudgetsGB {
			devices[device] = 0
		}
		return Breakdown(devices)
	}

	params := paramCount(meta.Safetensors, meta.Config, meta.ID)
	if params <= 0 {
		for device := range deviceBudgetsGB {
			devices[device] = 0
		}
		return Breakdown(devices)
	}

	sizeGB := params * bytesPerParam(meta.Safetensors, meta.Config) / (1 << 30)
	for device, budget := range deviceBudgetsGB {
		devices[device] = clamp01((budget - sizeGB) / budget)
	}
	return Breakdown(devices)
}

// paramCount resolves the parameter count with decreasing trust: the
// safetensors manifest total, per-dtype safetensors counts, declared config
// fields, then a size suffix like "7b" in the artifact name.
func paramCount(st *hub.SafetensorsReport, config map[string]any, id string) float64 {
	if st != nil {
		if st.Total > 0 {
			return float64(st.Total)
		}
		for _, dtype := range sortedKeys(st.Parameters) {
			if n := st.Parameters[dtype]; n > 0 {
				return float64(n)
			}
		}
	}
	for _, field := range paramCountFields {
		if n := numericField(config, field); n > 0 {
			return n
		}
	}
	if match := nameParamPattern.FindStringSubmatch(id); match != nil {
		if n, err := strconv.ParseFloat(match[1], 64); err == nil {
			return n * 1e9
		}
	}
	return 0
}

// bytesPerParam derives the per-parameter width from the dominant
// safetensors dtype, the declared torch dtype, or a quantization bit count.
// With no dtype evidence it assumes 16-bit weights.
func bytesPerParam(st *hub.SafetensorsReport, config map[string]any) float64 {
	if st != nil && len(st.Parameters) > 0 {
		dominant, best := "", int64(-1)
		for _, dtype := range sortedKeys(st.Parameters) {
			if st.Parameters[dtype] > best {
				dominant, best = dtype, st.Parameters[dtype]
			}
		}
		if b := dtypeBytes(dominant); b > 0 {
			return b
		}
	}
	if dtype, ok := config["torch_dtype"].(string); ok {
		if b := dtypeBytes(dtype); b > 0 {
			return b
		}
	}
	if qc, ok := config["quantization_config"].(map[string]any); ok {
		if bits := numericField(qc, "bits"); bits > 0 {
			return bits / 8
		}
	}
	return 2
}

func dtypeBytes(dtype string) float64 {
	match := dtypeDigits.FindString(dtype)
	if match == "" {
		return 0
	}
	bits, err := strconv.ParseFloat(match, 64)
	if err != nil || bits <= 0 {
		return 0
	}
	return bits / 8
}

func numericField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return 0
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
