package application

import "errors"

// ExchangeHyperliquid 交易所名称
const ExchangeHyperliquid = "HYPERLIQUID"

// ErrUpstreamFetch 错误：元数据或资产上下文请求失败
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// ErrUpstreamEmpty 错误：上游返回空数据，不生成报告
var ErrUpstreamEmpty = errors.New("upstream returned no data")

// ErrConnection 错误：流式连接无法建立或中途断开
var ErrConnection = errors.New("stream connection failed")

// ErrTimeout 错误：等待快照超时
var ErrTimeout = errors.New("timed out waiting for snapshot")

// ErrWrite 错误：输出文件写入失败
var ErrWrite = errors.New("write output failed")
