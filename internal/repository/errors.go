package repository

import "errors"

// 行が見つからないを統一
var ErrNotFound = errors.New("not found")

// 一意制約違反（メール重複など）
var ErrDuplicate = errors.New("duplicate")

// 他の行から参照されていて消せない
var ErrInUse = errors.New("in use")
