package dialog

// Подписи кнопок и ключевые слова. Сравнение всегда по нижнему регистру.
const (
	labelTranslate    = "перевод"
	labelQuiz         = "викторина по словарному запасу"
	labelConversation = "практика разговора"

	labelBeginner     = "начальный"
	labelIntermediate = "средний"
	labelAdvanced     = "продвинутый"

	kwMenu  = "меню"
	cmdMenu = "/menu"
)

const (
	msgGreeting = "Привет! Я бот, который поможет тебе учить английский язык.\n" +
		"Выбери один из режимов или используй команды для управления мной:\n\n" +
		"- /start - начать работу с ботом и показать это сообщение.\n" +
		"- меню - показать главное меню для выбора режима работы.\n" +
		"Режимы работы:\n" +
		"1. Перевод: я переведу твои слова или фразы.\n" +
		"2. Викторина по словарному запасу: проверь свои знания английских слов.\n" +
		"3. Практика разговора: попрактикуемся в разговорном английском."

	msgMenu           = "Выбери режим работы:"
	msgChooseOption   = "Пожалуйста, выбери опцию из клавиатуры."
	msgSendText       = "Отправь мне слово или фразу для перевода на английский."
	msgChooseLevel    = "Выбери уровень сложности для викторины:"
	msgBadLevel       = "Пожалуйста, выбери уровень сложности из предложенных опций."
	msgAskTopic       = "О чём хочешь поговорить? Напиши тему для практики разговора."
	msgCorrect        = "Верно! 🎉"
	msgIncorrect      = "Неверно. Правильный ответ был: %s."
	msgQuestion       = "Как будет на английском: '%s'?"
	msgQuizFinished   = "Викторина окончена! Ты правильно ответил на %d из %d слов."
	msgTranslation    = "Перевод: %s"
	msgCantTranslate  = "Не получилось перевести. Попробуй ещё раз."
	msgCantReply      = "Не получилось придумать ответ. Попробуй ещё раз."
	msgSomethingWrong = "Что-то пошло не так, давай начнём сначала."
)

func menuKeyboard() [][]string {
	return [][]string{
		{"Перевод"},
		{"Викторина по словарному запасу"},
		{"Практика разговора"},
	}
}

func levelKeyboard() [][]string {
	return [][]string{
		{"Начальный"},
		{"Средний"},
		{"Продвинутый"},
	}
}
