package game

import "errors"

// Sentinel errors for rejected commands. The messages are user-facing and
// therefore in Portuguese; they travel verbatim inside error frames and REST
// error envelopes.
var (
	ErrNameInvalid       = errors.New("nome deve ter entre 1 e 20 caracteres")
	ErrNameTaken         = errors.New("este nome já está em uso na sala")
	ErrAdminExists       = errors.New("a sala já possui um administrador")
	ErrRoomNotFound      = errors.New("sala não encontrada")
	ErrBadPassword       = errors.New("senha incorreta")
	ErrPhaseViolation    = errors.New("ação não permitida na fase atual do jogo")
	ErrNotAuthorized     = errors.New("apenas o administrador pode executar esta ação")
	ErrAlreadyAnswered   = errors.New("você já respondeu esta pergunta")
	ErrOptionOutOfRange  = errors.New("resposta inválida")
	ErrCapacityExhausted = errors.New("não foi possível gerar um código de sala livre")
	ErrNotConnected      = errors.New("você não está em uma sala")
)

// Start preconditions and lifecycle rejections.
var (
	ErrNoQuestions      = errors.New("adicione perguntas antes de iniciar o jogo")
	ErrNoPlayers        = errors.New("é necessário pelo menos um jogador para iniciar")
	ErrRoomNameInvalid  = errors.New("nome da sala deve ter entre 1 e 30 caracteres")
	ErrMemberNotFound   = errors.New("membro não encontrado na sala")
	ErrReconnectExpired = errors.New("sessão expirada, entre na sala novamente")
	ErrAdminAnswer      = errors.New("o administrador não pode responder perguntas")
	ErrWaitingNextGame  = errors.New("aguarde o próximo jogo para participar")
)

// Question validation errors.
var (
	ErrQuestionText    = errors.New("o texto da pergunta é obrigatório")
	ErrQuestionOptions = errors.New("a pergunta deve ter exatamente 4 opções preenchidas")
	ErrQuestionCorrect = errors.New("o índice da resposta correta deve estar entre 0 e 3")
	ErrQuestionTime    = errors.New("o tempo limite deve estar entre 5 e 60 segundos")
	ErrQuestionIndex   = errors.New("índice de pergunta inválido")
)
