package model

// MaxProfiles 每个机顶盒最多可创建的用户数
const MaxProfiles = 4

// Profile 用户档案（GET /login/{settopNum}）
type Profile struct {
	ID     FlexID  `json:"USER_ID"`
	Name   string  `json:"USER_NAME"`
	Gender string  `json:"GENDER,omitempty"`
	Age    FlexInt `json:"AGE,omitempty"`
}

// NewProfile 创建用户请求体（POST /user/）
type NewProfile struct {
	SettopNum string `json:"SETTOP_NUM"`
	Name      string `json:"USER_NAME"`
	Gender    string `json:"GENDER"`
	Age       int    `json:"AGE"`
}

// CanAddProfile 当前数量下是否还能新增用户
func CanAddProfile(count int) bool {
	return count < MaxProfiles
}

// ActiveProfile 当前选中的用户，存放在会话中
type ActiveProfile struct {
	ID   string
	Name string
}
