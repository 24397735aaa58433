package domain

// ConversionState состояние обработки одного запроса
type ConversionState string

const (
	StateValidating ConversionState = "validating" // Проверка типов файлов
	StateConverting ConversionState = "converting" // Выполняется рецепт
	StateSucceeded  ConversionState = "succeeded"
	StateFailed     ConversionState = "failed"
)

// IsFinal проверяет, является ли состояние финальным
func (s ConversionState) IsFinal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CanTransition разрешает только validating → converting → succeeded|failed.
// Из validating можно сразу упасть в failed.
func (s ConversionState) CanTransition(next ConversionState) bool {
	switch s {
	case StateValidating:
		return next == StateConverting || next == StateFailed
	case StateConverting:
		return next == StateSucceeded || next == StateFailed
	}
	return false
}

func (s ConversionState) String() string {
	return string(s)
}
