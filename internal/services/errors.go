package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("registro não encontrado")
	ErrInvalidPassword = errors.New("senha inválida")
	ErrUnauthorized    = errors.New("não autorizado")
	ErrInvalidState    = errors.New("transição de estado inválida")
	ErrDuplicate       = errors.New("registro duplicado")
	ErrValidation      = errors.New("dados inválidos")
)

// Commission plan validation errors (user-correctable, block the save)
var (
	ErrSemParcelas          = errors.New("adicione ao menos uma parcela ou marque recebimento adiantado")
	ErrParcelaSemData       = errors.New("toda parcela ativa precisa de uma data de pagamento")
	ErrTetoComissaoExcedido = errors.New("a soma dos percentuais das parcelas excede o teto de 280%")
)
