package service

import (
	"fmt"
	"html"

	"financeiro/config"

	"gopkg.in/gomail.v2"
)

// mailSender 发送邮件的最小接口，*gomail.Dialer 满足该接口
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService 邮件服务（账号状态通知，尽力而为）
type EmailService struct {
	cfg    *config.EmailConfig
	sender mailSender
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Enabled 邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// SendAccountStatusEmail 通知用户账号已启用或停用
func (s *EmailService) SendAccountStatusEmail(toEmail, name string, active bool) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用，请配置 FINANCEIRO_EMAIL_ENABLED=true")
	}

	subject := "[Financeiro] Sua conta foi desativada"
	if active {
		subject = "[Financeiro] Sua conta foi reativada"
	}
	return s.sendEmail(toEmail, subject, s.generateStatusEmailBody(name, active))
}

// SendAccountDeletedEmail 通知用户账号及数据已被删除
func (s *EmailService) SendAccountDeletedEmail(toEmail, name string) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用，请配置 FINANCEIRO_EMAIL_ENABLED=true")
	}

	subject := "[Financeiro] Sua conta foi excluída"
	return s.sendEmail(toEmail, subject, s.generateDeletedEmailBody(name))
}

const emailLayout = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, %s); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 Financeiro</h1>
        </div>
        <div class="content">
            <p>Olá, <strong>%s</strong>!</p>
            %s
        </div>
        <div class="footer">
            <p>Este e-mail foi enviado automaticamente, não responda.</p>
        </div>
    </div>
</body>
</html>
`

// generateStatusEmailBody 生成启用/停用通知内容
func (s *EmailService) generateStatusEmailBody(name string, active bool) string {
	gradient := "#ef4444, #b91c1c"
	content := `<p>Sua conta foi <strong>desativada</strong> por um administrador.</p>
            <p>Entre em contato com o administrador para mais informações.</p>`
	if active {
		gradient = "#10b981, #059669"
		content = `<p>Sua conta foi <strong>reativada</strong>. Você já pode acessar o sistema normalmente.</p>`
	}
	return fmt.Sprintf(emailLayout, gradient, html.EscapeString(name), content)
}

// generateDeletedEmailBody 生成删除通知内容
func (s *EmailService) generateDeletedEmailBody(name string) string {
	content := `<p>Sua conta e todos os seus dados financeiros foram <strong>excluídos</strong> por um administrador.</p>
            <p>Esta ação não pode ser desfeita.</p>`
	return fmt.Sprintf(emailLayout, "#6b7280, #374151", html.EscapeString(name), content)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
