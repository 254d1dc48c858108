package flow

// User facing bot texts. Raw transport and configuration errors never reach
// the customer; they are translated to one of these.
const MSG_TRANSFER string = "Certo! Estou te transferindo para um de nossos atendentes. Aguarde um momento, por favor."
const MSG_GENERIC_ERROR string = "Ops, algo deu errado por aqui. Tente novamente em instantes."
const MSG_ERP_UNREACHABLE string = "Não conseguimos conectar ao nosso sistema no momento. Tente novamente em instantes."
const MSG_ERP_TIMEOUT string = "Nosso sistema demorou para responder. Tente novamente em instantes."
const MSG_ERP_UNAUTHORIZED string = "Não foi possível consultar seus dados agora. Nossa equipe já foi avisada."
const MSG_ERP_NOT_FOUND string = "Não encontramos seu cadastro. Confira os dados informados e tente novamente."
const MSG_WRITE_OK string = "Prontinho! Sua solicitação foi registrada com sucesso."
const MSG_WRITE_FAILED string = "Não conseguimos registrar sua solicitação agora. Tente novamente mais tarde."
const MSG_NO_OPEN_INVOICES string = "Boa notícia! Não encontramos faturas em aberto no seu cadastro. Você está em dia."
const MSG_NOT_UNDERSTOOD string = "Desculpe, não entendi. Pode escolher uma das opções ou tentar de novo?"
