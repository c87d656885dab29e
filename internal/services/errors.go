package services

import "errors"

var (
	ErrPropertyNotFound    = errors.New("房源不存在")
	ErrAlreadyFavorited    = errors.New("已经收藏过此房源")
	ErrNotFavorited        = errors.New("未收藏此房源")
	ErrInvalidCode         = errors.New("验证码错误或已过期")
	ErrCodeNotRequested    = errors.New("请先获取验证码")
	ErrBadCredentials      = errors.New("邮箱或密码错误")
	ErrEmailNotVerified    = errors.New("邮箱未验证，请先完成注册邮箱验证")
	ErrMailDelivery        = errors.New("邮件发送失败，请稍后重试")
	ErrLocationExists      = errors.New("位置名称已存在")
	ErrPropertyTypeExists  = errors.New("房屋类型名称已存在")
	ErrReferenceInUse      = errors.New("reference in use")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
