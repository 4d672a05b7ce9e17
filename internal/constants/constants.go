package constants

// 会话状态常量
const (
	SessionStateClosed     = "closed"
	SessionStateLoading    = "loading"
	SessionStateReady      = "ready"
	SessionStateSubmitting = "submitting"
)

// 会话可见错误码常量
const (
	SessionErrorNone       = ""
	SessionErrorLoadFailed = "load_failed"
	SessionErrorNoVariant  = "no_variant"
	SessionErrorAddFailed  = "add_failed"
)

// 购物车相关常量
const (
	// AutoAddedPropertyKey 自动加购标记属性键
	AutoAddedPropertyKey = "_auto_added"
	// AutoAddedPropertyValue 自动加购标记属性值
	AutoAddedPropertyValue = "Gift Guide rule"
	// CartRoute 提交成功后的跳转地址
	CartRoute = "/cart"
)

// 队列常量
const (
	QueueDefault = "default"

	// TaskGuideSubmissionRecord 提交记录落库任务
	TaskGuideSubmissionRecord = "guide:submission_record"
)
