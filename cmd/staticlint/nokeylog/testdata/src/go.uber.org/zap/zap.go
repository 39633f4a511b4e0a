package zap

type Field struct{}

func String(key, val string) Field { return Field{} }

func Any(key string, val interface{}) Field { return Field{} }
