// Package scorm 将内容上报的 CMI 数据（SCORM 1.2 / 2004）规整为对 attempt 的字段更新。
//
// 请求体的标准格式为 {"payload": {...}}；不带 payload 的裸对象作为旧格式兼容，
// 整个对象即数据根。每个版本有独立的类型化解析器，缺失或无法解析的字段直接跳过，
// 不会让整次提交失败。
package scorm
