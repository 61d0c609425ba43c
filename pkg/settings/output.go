package settings

import (
	"fmt"
	"strconv"
	"strings"

	"progdemo/pkg/common"
)

// Output lists every setting in Keys order.
func (v Values) Output(path string) *common.Output {
	storage := v.StorageDir
	if storage == "" {
		storage = "(default)"
	}
	return &common.Output{
		Message: "Settings from " + path,
		KV: []common.KV{
			{Key: "storage_dir", Value: storage},
			{Key: "file_count", Value: strconv.Itoa(v.FileCount)},
			{Key: "data_count", Value: strconv.Itoa(v.DataCount)},
			{Key: "workers", Value: strconv.Itoa(v.Workers)},
			{Key: "extensions", Value: strings.Join(v.Extensions, ",")},
			{Key: "pace", Value: fmt.Sprintf("%g", v.Pace)},
		},
	}
}
