package i18n

import "golang.org/x/text/message"

func init() {
	lang := BrazilianPortuguese

	// Page
	message.SetString(lang, "page.title", "%s | LetterPlay")
	message.SetString(lang, "page.not_found", "Dados não encontrados.")
	message.SetString(lang, "page.loading", "Carregando...")
	message.SetString(lang, "page.developer", "Desenvolvedora")
	message.SetString(lang, "page.publisher", "Publicadora")
	message.SetString(lang, "page.favorite", "Favorito")
	message.SetString(lang, "page.add_favorite", "Adicionar aos Favoritos")
	message.SetString(lang, "page.released", "Lançamento: %s")
	message.SetString(lang, "page.close", "Fechar")

	// Reviews
	message.SetString(lang, "reviews.title", "Avaliações da Comunidade")
	message.SetString(lang, "reviews.average", "Média: %.1f")
	message.SetString(lang, "reviews.form_title", "Deixe sua avaliação")
	message.SetString(lang, "reviews.your_rating", "Sua nota:")
	message.SetString(lang, "reviews.commenting_as", "Comentando como %s...")
	message.SetString(lang, "reviews.placeholder", "Escreva sua avaliação...")
	message.SetString(lang, "reviews.publish", "Publicar")
	message.SetString(lang, "reviews.loading", "Carregando avaliações...")
	message.SetString(lang, "reviews.empty", "Nenhuma avaliação ainda. Seja o primeiro!")
	message.SetString(lang, "reviews.delete", "Excluir")
	message.SetString(lang, "reviews.confirm_delete", "Tem certeza que deseja apagar esta avaliação?")

	// Alerts
	message.SetString(lang, "alert.login_required", "Você precisa estar logado para avaliar.")
	message.SetString(lang, "alert.empty_comment", "Escreva um comentário.")
	message.SetString(lang, "alert.review_posted", "Avaliação enviada!")
	message.SetString(lang, "alert.review_failed", "Erro ao enviar avaliação.")
	message.SetString(lang, "alert.delete_failed", "Erro ao apagar avaliação.")
	message.SetString(lang, "alert.favorite_failed", "Erro, voce ja adicionou esse jogo aos favoritos.")

	// Watchlist statuses
	message.SetString(lang, "status.JOGADO", "Jogado")
	message.SetString(lang, "status.JOGANDO", "Jogando")
	message.SetString(lang, "status.ABANDONADO", "Abandonado")
	message.SetString(lang, "status.AINDA NAO JOGADO", "Ainda não jogado")
}
