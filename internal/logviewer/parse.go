package logviewer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/valyala/fastjson"

	"github.com/akave-ai/logviewer/internal/model"
)

var errNoTimestamp = errors.New("log line has no timestamp")

// Field names written by zerolog, plus the optional message template field.
const (
	fieldLevel    = "level"
	fieldTime     = "time"
	fieldMessage  = "message"
	fieldTemplate = "mt"
	fieldError    = "error"
	fieldStack    = "stack"
)

// parseLine decodes one JSON log line.
func parseLine(p *fastjson.Parser, line []byte) (model.LogMessage, error) {
	var msg model.LogMessage

	v, err := p.ParseBytes(line)
	if err != nil {
		return msg, err
	}
	obj, err := v.Object()
	if err != nil {
		return msg, err
	}

	ts, err := parseTime(obj.Get(fieldTime))
	if err != nil {
		return msg, err
	}
	msg.Timestamp = ts

	msg.Level = model.LevelInformation
	if lv := obj.Get(fieldLevel); lv != nil {
		if parsed, err := model.ParseLogLevel(string(lv.GetStringBytes())); err == nil {
			msg.Level = parsed
		}
	}

	msg.RenderedMessage = string(obj.Get(fieldMessage).GetStringBytes())
	msg.MessageTemplateText = msg.RenderedMessage
	if mt := obj.Get(fieldTemplate); mt != nil {
		msg.MessageTemplateText = string(mt.GetStringBytes())
	}

	if ev := obj.Get(fieldError); ev != nil {
		msg.Exception = valueString(ev)
	}
	if sv := obj.Get(fieldStack); sv != nil {
		if msg.Exception != "" {
			msg.Exception += "\n"
		}
		msg.Exception += valueString(sv)
	}

	obj.Visit(func(key []byte, val *fastjson.Value) {
		switch string(key) {
		case fieldLevel, fieldTime, fieldMessage, fieldTemplate, fieldError, fieldStack:
			return
		}
		if msg.Properties == nil {
			msg.Properties = make(map[string]any)
		}
		msg.Properties[string(key)] = valueToAny(val)
	})
	return msg, nil
}

func parseTime(v *fastjson.Value) (time.Time, error) {
	if v == nil {
		return time.Time{}, errNoTimestamp
	}
	switch v.Type() {
	case fastjson.TypeString:
		ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes()))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
		}
		return ts, nil
	case fastjson.TypeNumber:
		n := v.GetFloat64()
		switch {
		case n > 1e17:
			return time.Unix(0, int64(n)), nil
		case n > 1e14:
			return time.UnixMicro(int64(n)), nil
		case n > 1e11:
			return time.UnixMilli(int64(n)), nil
		default:
			sec, frac := math.Modf(n)
			return time.Unix(int64(sec), int64(frac*1e9)), nil
		}
	default:
		return time.Time{}, errNoTimestamp
	}
}

func valueString(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}

func valueToAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeArray:
		arr := v.GetArray()
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			out = append(out, valueToAny(item))
		}
		return out
	case fastjson.TypeObject:
		out := make(map[string]any)
		v.GetObject().Visit(func(key []byte, val *fastjson.Value) {
			out[string(key)] = valueToAny(val)
		})
		return out
	default:
		return v.String()
	}
}
