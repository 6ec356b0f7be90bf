package handlers

// Константы валидации анкеты бронирования
const (
	// Имя гостя
	NameMinLength = 2

	// Комментарий к брони
	CommentMaxLength = 500

	// Предзаказ сетов
	SetCountMax = 100
)

// SkipLabel надпись кнопки, пропускающей необязательный шаг
const SkipLabel = "Пропустить"
