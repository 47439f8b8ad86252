// Package otp реализует генерацию и проверку одноразовых кодов
// для подтверждения электронной почты.
//
// Код всегда состоит ровно из 6 ASCII-цифр и выпускается с ограниченным
// сроком действия. Истечение срока проверяется лениво, при валидации.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// TTL срок действия одноразового кода.
const TTL = 10 * time.Minute

// Generate возвращает 6-значный код из криптографически стойкого источника.
func Generate() (string, error) {
	const op = "otp.Generate"
	// диапазон [100000, 999999], без ведущих нулей
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// GenerateWithExpiry возвращает новый код и момент истечения его срока действия.
func GenerateWithExpiry() (string, time.Time, error) {
	code, err := Generate()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, time.Now().Add(TTL), nil
}

// Validate проверяет код, присланный пользователем, против сохранённого.
//
// Код невалиден, если любое из значений отсутствует, срок истёк либо
// строки не совпадают посимвольно. Никакой нормализации не выполняется.
func Validate(provided string, stored *string, expiresAt *time.Time) bool {
	if provided == "" || stored == nil || *stored == "" || expiresAt == nil {
		return false
	}
	// момент истечения включительно считается просроченным
	if !time.Now().Before(*expiresAt) {
		return false
	}
	return provided == *stored
}
