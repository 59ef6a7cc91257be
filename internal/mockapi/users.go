package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	userTypeCustomer = 0
	userTypePilot    = 1
	userTypeAdmin    = 2
	userTypeMerchant = 3
)

var userTypeNames = map[int]string{
	userTypeCustomer: "CUSTOMER",
	userTypePilot:    "PILOT",
	userTypeAdmin:    "ADMIN",
	userTypeMerchant: "MERCHANT",
}

var userTypeDescs = map[int]string{
	userTypeCustomer: "普通用户",
	userTypePilot:    "飞手",
	userTypeAdmin:    "管理员",
	userTypeMerchant: "商家",
}

type user struct {
	ID            int64
	Username      string
	Nickname      string
	Phone         string
	Email         string
	PasswordHash  []byte
	UserType      int
	Status        int
	CreateTime    time.Time
	LastLoginTime *time.Time
}

// userVO 对外展示的用户信息，用户类型按枚举名序列化
type userVO struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	UserType      string `json:"userType"`
	UserTypeDesc  string `json:"userTypeDesc"`
	Status        int    `json:"status"`
	StatusDesc    string `json:"statusDesc"`
	CreateTime    string `json:"createTime"`
	LastLoginTime string `json:"lastLoginTime,omitempty"`
}

const timeLayout = "2006-01-02T15:04:05"

func (u *user) view() userVO {
	vo := userVO{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Phone:        u.Phone,
		Email:        u.Email,
		UserType:     userTypeNames[u.UserType],
		UserTypeDesc: userTypeDescs[u.UserType],
		Status:       u.Status,
		StatusDesc:   "禁用",
		CreateTime:   u.CreateTime.Format(timeLayout),
	}
	if u.Status == 1 {
		vo.StatusDesc = "启用"
	}
	if u.LastLoginTime != nil {
		vo.LastLoginTime = u.LastLoginTime.Format(timeLayout)
	}
	return vo
}

// SeedUser 初始用户
type SeedUser struct {
	Username string
	Password string
	Nickname string
	UserType int
	Status   int
}

// DefaultSeedUsers 默认初始用户
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Username: "admin", Password: "admin123", Nickname: "管理员", UserType: userTypeAdmin, Status: 1},
		{Username: "pilot01", Password: "pilot123", Nickname: "飞手一号", UserType: userTypePilot, Status: 1},
		{Username: "customer01", Password: "customer123", Nickname: "顾客", UserType: userTypeCustomer, Status: 1},
		{Username: "merchant01", Password: "merchant123", Nickname: "停用商家", UserType: userTypeMerchant, Status: 0},
	}
}

// userRepo 内存用户仓库
type userRepo struct {
	mu     sync.RWMutex
	users  map[int64]*user
	nextID int64
	cost   int
}

func newUserRepo(cost int) *userRepo {
	return &userRepo{users: make(map[int64]*user), nextID: 1, cost: cost}
}

func (r *userRepo) create(seed SeedUser) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == seed.Username {
			return nil, errUsernameTaken
		}
	}
	u := &user{
		ID:           r.nextID,
		Username:     seed.Username,
		Nickname:     seed.Nickname,
		PasswordHash: hash,
		UserType:     seed.UserType,
		Status:       seed.Status,
		CreateTime:   time.Now(),
	}
	r.users[u.ID] = u
	r.nextID++
	return u, nil
}

// byID 返回副本，避免调用方与写操作竞争
func (r *userRepo) byID(id int64) (user, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (r *userRepo) byUsername(username string) (user, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return *u, true
		}
	}
	return user{}, false
}

func (r *userRepo) touchLogin(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		now := time.Now()
		u.LastLoginTime = &now
	}
}

func (r *userRepo) setStatus(id int64, status int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if ok {
		u.Status = status
	}
	return ok
}

func (r *userRepo) remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	delete(r.users, id)
	return ok
}

// page 按ID排序分页，username为包含匹配
func (r *userRepo) page(current, size int, username string, status *int) ([]userVO, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*user, 0, len(r.users))
	for _, u := range r.users {
		if username != "" && !strings.Contains(u.Username, username) {
			continue
		}
		if status != nil && u.Status != *status {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (current - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	records := make([]userVO, 0, end-start)
	for _, u := range matched[start:end] {
		records = append(records, u.view())
	}
	return records, total
}
