package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID 后端 ID，可能以数字或字符串出现
// 反序列化两种形式都接受；序列化时纯数字输出为 JSON 数字，其余输出为字符串
type FlexID string

// UnmarshalJSON 实现 json.Unmarshaler
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("无效的 ID: %s", data)
	}
	*id = FlexID(n.String())
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (id FlexID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String 返回原始字符串
func (id FlexID) String() string {
	return string(id)
}

// IsZero 是否为空
func (id FlexID) IsZero() bool {
	return id == ""
}

// FlexInt 整数，接受 JSON 数字或数字字符串
type FlexInt int

// UnmarshalJSON 实现 json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("无效的整数: %q", s)
		}
		*n = FlexInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("无效的整数: %s", data)
	}
	*n = FlexInt(int(f))
	return nil
}

// Int 转为 int
func (n FlexInt) Int() int {
	return int(n)
}
